package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either Subject/Text/HTML are given directly or Template and Data are
// rendered by the worker.
type EmailJob struct {
	To          string         `json:"to"`
	Subject     string         `json:"subject,omitempty"`
	Text        string         `json:"text,omitempty"`
	HTML        string         `json:"html,omitempty"`
	Template    string         `json:"template,omitempty"` // welcome, new_recipe, shopping_list
	Data        map[string]any `json:"data,omitempty"`
	Attachments []Attachment   `json:"attachments,omitempty"`
}

// Attachment is a small in-memory file sent along with the message.
type Attachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}
