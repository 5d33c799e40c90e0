package helpers

import (
	"fmt"
	"strings"

	"github.com/oksasatya/foodgram-api/pkg/mailer"
	mailtpl "github.com/oksasatya/foodgram-api/pkg/mailer/templates"
)

// NormalizeEmailJob fills the recipient fields templates rely on and
// lowercases the template name.
func NormalizeEmailJob(job *mailer.EmailJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	job.Template = strings.ToLower(strings.TrimSpace(job.Template))
}

// FallbackSubject is used when a job carries neither a subject nor a template.
func FallbackSubject(job *mailer.EmailJob) string {
	switch job.Template {
	case mailtpl.Welcome:
		return "Welcome to Foodgram"
	case mailtpl.NewRecipe:
		return "New recipe from an author you follow"
	case mailtpl.ShoppingList:
		return "Your shopping list"
	default:
		return "Notification"
	}
}
