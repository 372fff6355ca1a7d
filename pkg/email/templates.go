package email

import (
	"fmt"
)

// InterviewEmailData contains the data needed for interview email templates.
type InterviewEmailData struct {
	CandidateName string
	Email         string
	CompanyName   string
	JobTitle      string
	BookingURL    string
	ScheduledAt   string // already formatted in the slot's timezone
	Timezone      string
	Duration      int
	InterviewType string
	LocationOrLink string
	Instructions  string
	ExpiresInDays int
	AppName       string
}

// BuildInterviewInvitationEmail creates the invitation message carrying the
// booking link a candidate uses to pick a slot.
func BuildInterviewInvitationEmail(data InterviewEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = "HireLink"
	}

	name := data.CandidateName
	if name == "" {
		name = "there"
	}

	subject := fmt.Sprintf("Interview invitation from %s", data.CompanyName)

	textBody := fmt.Sprintf(`Hi %s,

Good news! %s would like to interview you for the %s position.

Pick an interview time that works for you:
%s

This link expires in %d days.

Thanks,
The %s Team`,
		name, data.CompanyName, data.JobTitle, data.BookingURL, data.ExpiresInDays, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>Good news! <strong>%s</strong> would like to interview you for the <strong>%s</strong> position.</p>
    <p style="text-align: center; margin: 30px 0;">
        <a href="%s" style="background-color: #2563eb; color: white; padding: 14px 28px; text-decoration: none; border-radius: 6px; display: inline-block; font-size: 16px;">Pick an Interview Time</a>
    </p>
    <p style="color: #6b7280; font-size: 14px;"><em>This link expires in %d days.</em></p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		name, data.CompanyName, data.JobTitle, data.BookingURL, data.ExpiresInDays, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// BuildInterviewConfirmationEmail creates the confirmation message sent once
// a candidate has claimed a slot.
func BuildInterviewConfirmationEmail(data InterviewEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = "HireLink"
	}

	name := data.CandidateName
	if name == "" {
		name = "there"
	}

	subject := fmt.Sprintf("Interview confirmed — %s, %s", data.CompanyName, data.ScheduledAt)

	details := fmt.Sprintf("When: %s (%s)\nDuration: %d minutes\nFormat: %s",
		data.ScheduledAt, data.Timezone, data.Duration, data.InterviewType)
	if data.LocationOrLink != "" {
		details += "\nWhere: " + data.LocationOrLink
	}
	if data.Instructions != "" {
		details += "\nInstructions: " + data.Instructions
	}

	textBody := fmt.Sprintf(`Hi %s,

Your interview with %s for the %s position is confirmed.

%s

Good luck!
The %s Team`,
		name, data.CompanyName, data.JobTitle, details, appName)

	htmlDetails := fmt.Sprintf(`<p><strong>When:</strong> %s (%s)</p>
    <p><strong>Duration:</strong> %d minutes</p>
    <p><strong>Format:</strong> %s</p>`,
		data.ScheduledAt, data.Timezone, data.Duration, data.InterviewType)
	if data.LocationOrLink != "" {
		htmlDetails += fmt.Sprintf(`
    <p><strong>Where:</strong> %s</p>`, data.LocationOrLink)
	}
	if data.Instructions != "" {
		htmlDetails += fmt.Sprintf(`
    <p><strong>Instructions:</strong> %s</p>`, data.Instructions)
	}

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #16a34a;">Hi %s,</h2>
    <p>Your interview with <strong>%s</strong> for the <strong>%s</strong> position is confirmed.</p>
    <div style="background-color: #f3f4f6; padding: 15px 20px; border-radius: 6px; margin: 20px 0;">
    %s
    </div>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Good luck!<br>The %s Team</p>
</body>
</html>`,
		name, data.CompanyName, data.JobTitle, htmlDetails, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// BuildInterviewReminderEmail creates the day-before reminder message.
func BuildInterviewReminderEmail(data InterviewEmailData) Message {
	appName := data.AppName
	if appName == "" {
		appName = "HireLink"
	}

	name := data.CandidateName
	if name == "" {
		name = "there"
	}

	subject := fmt.Sprintf("Reminder: interview with %s on %s", data.CompanyName, data.ScheduledAt)

	textBody := fmt.Sprintf(`Hi %s,

A quick reminder about your upcoming interview with %s for the %s position.

When: %s (%s)
Format: %s

Good luck!
The %s Team`,
		name, data.CompanyName, data.JobTitle, data.ScheduledAt, data.Timezone, data.InterviewType, appName)

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
	}
}
