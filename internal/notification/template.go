package notification

import "strings"

// Notification kinds produced by the intranet collaborators.
const (
	KindChatMessage     = "chat_message"
	KindTaskAssigned    = "task_assigned"
	KindTaskStatus      = "task_status"
	KindComplaintStatus = "complaint_status"
	KindSuggestion      = "suggestion"
	KindAnnouncement    = "announcement"
)

type kindTemplate struct {
	Title string
	Body  string
}

// kindTemplates fills in presentation defaults per kind. Placeholders in
// braces are substituted from the envelope data.
var kindTemplates = map[string]kindTemplate{
	KindChatMessage:     {Title: "New message", Body: "{sender_name}: {content}"},
	KindTaskAssigned:    {Title: "Task assigned", Body: "You have been assigned to {task_name}"},
	KindTaskStatus:      {Title: "Task updated", Body: "{task_name} is now {status}"},
	KindComplaintStatus: {Title: "Complaint updated", Body: "Your complaint is now {status}"},
	KindSuggestion:      {Title: "New suggestion", Body: "{sender_name} submitted a suggestion"},
	KindAnnouncement:    {Title: "Announcement", Body: "{title}"},
}

func fillTemplate(env *Envelope) {
	tpl, ok := kindTemplates[env.Kind]
	if !ok {
		return
	}

	if env.Title == "" {
		env.Title = renderTemplate(tpl.Title, env.Data)
	}

	if env.Body == "" {
		env.Body = renderTemplate(tpl.Body, env.Data)
	}
}

func renderTemplate(tpl string, data map[string]string) string {
	for key, value := range data {
		tpl = strings.ReplaceAll(tpl, "{"+key+"}", value)
	}

	return tpl
}
