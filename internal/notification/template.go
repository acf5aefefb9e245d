package notification

import (
	"bytes"
	"html/template"
	"time"
)

// DefaultSubject is used for email notifications that carry no subject.
const DefaultSubject = "Notification from Notification Service"

// DefaultFromAddr is the sender address used when none is configured.
const DefaultFromAddr = "noreply@notificationservice.com"

// emailTmpl wraps every outgoing email message. Message and UserID are
// auto-escaped by html/template.
var emailTmpl = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width,initial-scale=1.0">
  <title>{{.Subject}}</title>
</head>
<body style="margin:0;padding:0;background-color:#f4f4f5;
     font-family:Arial,sans-serif;line-height:1.6;color:#333333;">
  <table width="100%" cellpadding="0" cellspacing="0" role="presentation"
         style="background-color:#f4f4f5;padding:32px 16px;">
    <tr>
      <td align="center">
        <table width="600" cellpadding="0" cellspacing="0" role="presentation"
               style="max-width:600px;width:100%;border:1px solid #dddddd;border-radius:5px;">

          <!-- Header -->
          <tr>
            <td style="background-color:#4caf50;color:#ffffff;padding:12px;
                       text-align:center;border-radius:5px 5px 0 0;">
              <h2 style="margin:0;font-size:20px;">Notification Service</h2>
            </td>
          </tr>

          <!-- Body -->
          <tr>
            <td style="background-color:#f9f9f9;padding:24px;">
              <p style="margin:0 0 12px 0;"><strong>Hello,</strong></p>
              <div style="font-size:14px;white-space:pre-wrap;word-break:break-word;">{{.Message}}</div>
            </td>
          </tr>

          <!-- Footer -->
          <tr>
            <td style="padding:12px;text-align:center;font-size:12px;color:#777777;">
              <p style="margin:0;">User ID: {{.UserID}}</p>
              <p style="margin:0;">Sent at: {{.SentAt}}</p>
              <p style="margin:0;">This is an automated message from Notification Service.</p>
            </td>
          </tr>

        </table>
      </td>
    </tr>
  </table>
</body>
</html>
`))

// renderEmailHTML renders the HTML email for n. generatedAt is printed in the footer.
func renderEmailHTML(subject string, n Notification, generatedAt time.Time) (string, error) {
	var buf bytes.Buffer
	err := emailTmpl.Execute(&buf, struct {
		Subject string
		Message string
		UserID  string
		SentAt  string
	}{
		Subject: subject,
		Message: n.Message,
		UserID:  n.UserID,
		SentAt:  generatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
