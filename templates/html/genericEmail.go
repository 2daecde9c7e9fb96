package templates

import (
	"fmt"
	"html"
	"strings"
)

// RenderNotificationEmail builds the branded HTML body for a notification email.
// subject goes in the header banner. body is plain text; it is escaped and its newlines
// become <br> tags. When link is set a button pointing at it closes the message.
func RenderNotificationEmail(subject, body, link string) string {
	htmlBody := strings.ReplaceAll(html.EscapeString(body), "\n", "<br>")
	safeSubject := html.EscapeString(subject)

	button := ""
	if link != "" {
		button = fmt.Sprintf(`<p class="action"><a href="%s">Buka di portal Satgas PPK</a></p>`, html.EscapeString(link))
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="id">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: Arial, Helvetica, sans-serif; margin: 0; padding: 0; background-color: #f3f4f6; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background-color: #7f1d1d; padding: 32px 24px; text-align: center; }
    .header h1 { color: #ffffff; margin: 0; font-size: 22px; }
    .content { padding: 32px 24px; color: #1f2937; line-height: 1.6; font-size: 15px; }
    .action a { display: inline-block; padding: 10px 18px; background-color: #7f1d1d; color: #ffffff; text-decoration: none; border-radius: 4px; }
    .footer { padding: 24px; text-align: center; color: #6b7280; font-size: 12px; border-top: 1px solid #e5e7eb; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      %s
      %s
    </div>
    <div class="footer">
      <p>Satuan Tugas Pencegahan dan Penanganan Kekerasan</p>
      <p>Email ini dikirim otomatis. Isi laporan bersifat rahasia.</p>
    </div>
  </div>
</body>
</html>`, safeSubject, safeSubject, htmlBody, button)
}
