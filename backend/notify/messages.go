package notify

import (
	"fmt"
	"time"
)

func ApplicationApproved(email, name string) Message {
	return Message{
		To:      email,
		ToName:  name,
		Subject: "Your teacher application was approved",
		Text:    fmt.Sprintf("Hi %s,\n\nYour teacher application has been approved. You can now create courses and accept tutoring sessions.", name),
	}
}

func ApplicationRejected(email, name, reason string) Message {
	text := fmt.Sprintf("Hi %s,\n\nYour teacher application was not approved.", name)
	if reason != "" {
		text += "\n\nReason: " + reason
	}
	return Message{To: email, ToName: name, Subject: "Your teacher application", Text: text}
}

func SessionRequested(email, name, studentName, subject string, startsAt time.Time) Message {
	return Message{
		To:      email,
		ToName:  name,
		Subject: "New tutoring session request",
		Text: fmt.Sprintf("Hi %s,\n\n%s requested a session on %q starting %s.",
			name, studentName, subject, startsAt.UTC().Format(time.RFC1123)),
	}
}

func SessionAccepted(email, name, subject, meetingURL string, startsAt time.Time) Message {
	return Message{
		To:      email,
		ToName:  name,
		Subject: "Your tutoring session was accepted",
		Text: fmt.Sprintf("Hi %s,\n\nYour session on %q starting %s was accepted.\nJoin: %s",
			name, subject, startsAt.UTC().Format(time.RFC1123), meetingURL),
	}
}

func SessionDeclined(email, name, subject string) Message {
	return Message{
		To:      email,
		ToName:  name,
		Subject: "Your tutoring session was declined",
		Text:    fmt.Sprintf("Hi %s,\n\nYour session request on %q was declined. The payment was refunded to your wallet.", name, subject),
	}
}
