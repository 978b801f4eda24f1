package survey

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mbolis/survey-desk/model"
)

// Bucket is one bar of a breakdown chart.
type Bucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type RatingSummary struct {
	Count     int      `json:"count"`
	Mean      float64  `json:"mean"`
	Breakdown []Bucket `json:"breakdown"`
}

type TextAnswer struct {
	Respondent  string    `json:"respondent_name"`
	Answer      string    `json:"answer"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type QuestionSummary struct {
	Question model.Question `json:"question"`
	Answers  int            `json:"answers"`
	Rating   *RatingSummary `json:"rating,omitempty"`
	Choices  []Bucket       `json:"choices,omitempty"`
	Texts    []TextAnswer   `json:"texts,omitempty"`
}

type Report struct {
	SurveyID       int64             `json:"survey_id"`
	TotalAnswers   int               `json:"total_answers"`
	TotalQuestions int               `json:"total_questions"`
	Submissions    int               `json:"submissions"`
	Questions      []QuestionSummary `json:"questions"`
}

// Summarize aggregates the response rows of sv per question. Rows are matched
// to questions by question id; rows are expected newest first, as listed by
// the store.
func Summarize(sv model.Survey, rows []model.ResponseRow) Report {
	report := Report{
		SurveyID:       sv.ID,
		TotalAnswers:   len(rows),
		TotalQuestions: len(sv.Questions),
		Questions:      make([]QuestionSummary, 0, len(sv.Questions)),
	}

	byQuestion := map[int64][]model.ResponseRow{}
	submissions := map[string]bool{}
	for _, r := range rows {
		byQuestion[r.QuestionID] = append(byQuestion[r.QuestionID], r)
		submissions[r.SubmissionID] = true
	}
	report.Submissions = len(submissions)

	for _, q := range sv.Questions {
		qrows := byQuestion[q.ID]
		summary := QuestionSummary{Question: q, Answers: len(qrows)}

		switch q.Type {
		case model.TypeRating:
			rating := Ratings(answersOf(qrows))
			summary.Rating = &rating
		case model.TypeChoice:
			summary.Choices = Choices(answersOf(qrows))
		default:
			summary.Texts = make([]TextAnswer, len(qrows))
			for i, r := range qrows {
				summary.Texts[i] = TextAnswer{Respondent: r.Respondent, Answer: r.Answer, SubmittedAt: r.SubmittedAt}
			}
		}

		report.Questions = append(report.Questions, summary)
	}

	return report
}

// Ratings averages the numeric answers, ignoring anything that does not
// parse as a finite number. The mean is rounded to two decimals.
func Ratings(answers []string) RatingSummary {
	summary := RatingSummary{Breakdown: []Bucket{}}

	counts := map[float64]int{}
	sum := 0.0
	for _, a := range answers {
		v, err := strconv.ParseFloat(strings.TrimSpace(a), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		counts[v]++
		sum += v
		summary.Count++
	}
	if summary.Count == 0 {
		return summary
	}

	summary.Mean = math.Round(sum/float64(summary.Count)*100) / 100

	values := make([]float64, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Float64s(values)
	for _, v := range values {
		summary.Breakdown = append(summary.Breakdown, Bucket{
			Label: strconv.FormatFloat(v, 'f', -1, 64),
			Count: counts[v],
		})
	}
	return summary
}

// Choices tallies the chosen options, most chosen first.
func Choices(answers []string) []Bucket {
	counts := map[string]int{}
	for _, a := range answers {
		counts[a]++
	}

	buckets := make([]Bucket, 0, len(counts))
	for label, n := range counts {
		buckets = append(buckets, Bucket{Label: label, Count: n})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Label < buckets[j].Label
	})
	return buckets
}

func answersOf(rows []model.ResponseRow) []string {
	answers := make([]string, len(rows))
	for i, r := range rows {
		answers[i] = r.Answer
	}
	return answers
}
