package sendloandecision

import (
	"fmt"
	"strings"

	"loan-assessment-workers/internal/currency"
	"loan-assessment-workers/internal/models"
)

type template struct {
	Subject string
	Body    string
	SMS     string
}

var templates = map[models.Decision]template{
	models.DecisionApproved: {
		Subject: "Your loan application for {{amount}} has been approved",
		Body: "Dear {{fullName}},\n\n" +
			"Good news: your application {{applicationId}} for {{amount}} was {{decision}} " +
			"with {{confidence}}% confidence.\n\n" +
			"{{reasoning}}\n\n" +
			"Next steps:\n{{recommendations}}\n",
		SMS: "Hi {{fullName}}, your loan application for {{amount}} was APPROVED. Check your email for details.",
	},
	models.DecisionRejected: {
		Subject: "Update on your loan application for {{amount}}",
		Body: "Dear {{fullName}},\n\n" +
			"After reviewing your application {{applicationId}} for {{amount}}, the decision is {{decision}}.\n\n" +
			"{{reasoning}}\n\n" +
			"What you can do:\n{{recommendations}}\n",
		SMS: "Hi {{fullName}}, there is an update on your loan application for {{amount}}. Check your email for details.",
	},
}

func templateFor(decision models.Decision) template {
	if t, ok := templates[decision]; ok {
		return t
	}
	return templates[models.DecisionRejected]
}

func templateData(input *Input) map[string]interface{} {
	app := input.Application
	a := input.Assessment

	var recs strings.Builder
	for _, r := range a.Recommendations {
		recs.WriteString("- " + r + "\n")
	}

	return map[string]interface{}{
		"applicationId":   input.ApplicationID,
		"fullName":        app.PersonalInfo.FullName,
		"amount":          currency.Format(app.LoanDetails.Amount, app.LoanDetails.Currency),
		"decision":        string(a.Decision),
		"confidence":      fmt.Sprintf("%.0f", a.Confidence),
		"reasoning":       a.Reasoning,
		"recommendations": strings.TrimRight(recs.String(), "\n"),
	}
}

// renderTemplate replaces {{key}} placeholders and drops unknown ones.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		value := ""
		if s, ok := v.(string); ok {
			value = s
		} else if v != nil {
			value = fmt.Sprintf("%v", v)
		}
		result = strings.ReplaceAll(result, "{{"+k+"}}", value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}
