package delivery

import (
	"fmt"
	"html"
	"math/rand"
	"strconv"
	"strings"
)

// personalizations maps a lowercased persona to its pool of closing
// lines. One is picked at random per message.
var personalizations = map[string][]string{
	"athlete": {
		"Train your mind like you train your body! 💪",
		"Champions are made in moments like these! 🏆",
		"Every rep in life counts! 🎯",
	},
	"entrepreneur": {
		"Build something amazing today! 🚀",
		"Your next breakthrough is waiting! 💡",
		"Turn today's challenges into tomorrow's victories! 📈",
	},
	"student": {
		"Knowledge is your superpower! 📚",
		"Every day is a chance to grow! 🌱",
		"You're building your future right now! ✨",
	},
	"professional": {
		"Make today count in your career! 💼",
		"Excellence is a daily habit! ⭐",
		"Lead by example today! 👑",
	},
	"parent": {
		"You're shaping the future! 👨‍👩‍👧‍👦",
		"Your love makes all the difference! ❤️",
		"Being a parent is your greatest adventure! 🌟",
	},
	"creative": {
		"Let your creativity flow today! 🎨",
		"Art is how you change the world! ✨",
		"Your imagination is unlimited! 🌈",
	},
	"leader": {
		"Great leaders inspire daily! 👑",
		"Your vision creates the future! 🔮",
		"Lead with purpose today! 🎯",
	},
	"teacher": {
		"You're planting seeds of wisdom! 🌱",
		"Every student you touch changes the world! 📚",
		"Teaching is the art of possibility! ✨",
	},
	"healthcare": {
		"You're a daily hero! 🏥",
		"Healing hearts and minds! ❤️",
		"Your care makes miracles happen! 🌟",
	},
}

var defaultPersonalizations = []string{
	"Make today amazing! ✨",
	"You've got this! 💪",
	"Believe in yourself! 🌟",
}

// Personalization returns a random closing line keyed to the persona.
// Unknown personas fall back to the generic pool.
func Personalization(persona string) string {
	pool, ok := personalizations[strings.ToLower(persona)]
	if !ok {
		pool = defaultPersonalizations
	}
	return pool[rand.Intn(len(pool))]
}

// FormatSMS builds the SMS body for a daily quote.
func FormatSMS(quote, author, subscriberName, personalization string) string {
	greeting := fmt.Sprintf("Good morning, %s! ☀️", subscriberName)
	formatted := fmt.Sprintf("\"%s\"\n\n— %s", quote, author)

	footer := "\n\nDaily Quotes 📖"
	if personalization != "" {
		footer = fmt.Sprintf("\n\n%s\n\nDaily Quotes 📖", personalization)
	}

	return fmt.Sprintf("%s\n\n%s%s", greeting, formatted, footer)
}

const dailyEmailTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Daily Quote</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%);">
  <div style="background: white; border-radius: 12px; padding: 30px;">
    <div style="text-align: center; margin-bottom: 30px;">
      <div style="font-size: 24px; color: #667eea; margin-bottom: 10px;">Good morning, %s! ☀️</div>
      <p style="color: #6c757d; margin: 0;">Your daily dose of inspiration</p>
    </div>
    <div style="text-align: center; margin: 30px 0; padding: 25px; background: #f5f7fa; border-radius: 10px; border-left: 4px solid #667eea;">
      <div style="font-size: 20px; font-style: italic; color: #2c3e50; margin-bottom: 15px;">"%s"</div>
      <div style="font-size: 16px; font-weight: 600; color: #667eea;">— %s</div>
    </div>
    %s
    <div style="text-align: center; margin-top: 30px; padding-top: 20px; border-top: 1px solid #e9ecef; color: #6c757d; font-size: 14px;">
      <p><strong>Your Daily Dose</strong> 📖</p>
      <p>Transforming your day, one quote at a time</p>
    </div>
  </div>
</body>
</html>`

// FormatEmail builds the subject and HTML body for a daily quote email.
func FormatEmail(quote, author, subscriberName, personalization string) (subject, htmlBody string) {
	subject = fmt.Sprintf("Your Daily Quote, %s! ✨", subscriberName)

	personalizationBlock := ""
	if personalization != "" {
		personalizationBlock = fmt.Sprintf(
			`<div style="background: #f8f9fa; padding: 15px; border-radius: 8px; margin: 20px 0; text-align: center; color: #495057; font-size: 16px;">%s</div>`,
			html.EscapeString(personalization),
		)
	}

	htmlBody = fmt.Sprintf(dailyEmailTemplate,
		html.EscapeString(subscriberName),
		html.EscapeString(quote),
		html.EscapeString(author),
		personalizationBlock,
	)
	return subject, htmlBody
}

const welcomeEmailTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Welcome to Your Daily Dose</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%);">
  <div style="background: white; border-radius: 12px; padding: 30px;">
    <div style="text-align: center; margin-bottom: 30px;">
      <div style="font-size: 26px; color: #667eea; margin-bottom: 10px;">🎉 Welcome, %s!</div>
      <p style="color: #6c757d; margin: 0;">Your daily dose of inspiration starts now</p>
    </div>
    <div style="text-align: center; margin: 30px 0; padding: 25px; background: #f5f7fa; border-radius: 10px; border-left: 4px solid #667eea;">
      <p style="color: #6c757d; margin: 0 0 10px;">Here's your very first quote:</p>
      <div style="font-size: 20px; font-style: italic; color: #2c3e50; margin-bottom: 15px;">"%s"</div>
      <div style="font-size: 16px; font-weight: 600; color: #667eea;">— %s</div>
    </div>
    <div style="background: #f8f9fa; padding: 20px; border-radius: 8px; margin: 20px 0; color: #495057;">
      <p style="margin: 0 0 10px;"><strong>What to expect</strong></p>
      <p style="margin: 0 0 5px;">📬 A fresh quote every day at %s via %s</p>
      %s
    </div>
    <div style="text-align: center; margin-top: 30px; padding-top: 20px; border-top: 1px solid #e9ecef; color: #6c757d; font-size: 14px;">
      <p><strong>Your Daily Dose</strong> 📖</p>
      <p>Transforming your day, one quote at a time</p>
    </div>
  </div>
</body>
</html>`

// FormatWelcomeEmail builds the subject and HTML body for the welcome
// email sent after signup.
func FormatWelcomeEmail(quote, author, subscriberName, deliveryTime string, methods, goals []string) (subject, htmlBody string) {
	subject = fmt.Sprintf("🎉 Welcome to Your Daily Dose, %s!", subscriberName)

	goalsBlock := ""
	if len(goals) > 0 {
		goalsBlock = fmt.Sprintf(
			`<p style="margin: 0;">🎯 Quotes tuned to your goals: %s</p>`,
			html.EscapeString(strings.Join(goals, ", ")),
		)
	}

	methodList := strings.Join(methods, " and ")
	if methodList == "" {
		methodList = "email"
	}

	htmlBody = fmt.Sprintf(welcomeEmailTemplate,
		html.EscapeString(subscriberName),
		html.EscapeString(quote),
		html.EscapeString(author),
		html.EscapeString(FormatDeliveryTime(deliveryTime)),
		html.EscapeString(methodList),
		goalsBlock,
	)
	return subject, htmlBody
}

// FormatDeliveryTime converts a 24-hour "HH:MM" delivery slot to a
// 12-hour display string. Values it cannot parse pass through as-is.
func FormatDeliveryTime(deliveryTime string) string {
	if strings.Contains(deliveryTime, "AM") || strings.Contains(deliveryTime, "PM") {
		return deliveryTime
	}

	parts := strings.SplitN(deliveryTime, ":", 2)
	if len(parts) != 2 {
		return deliveryTime
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return deliveryTime
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return deliveryTime
	}

	ampm := "AM"
	if hours >= 12 {
		ampm = "PM"
	}
	display := hours % 12
	if display == 0 {
		display = 12
	}

	return fmt.Sprintf("%d:%02d %s", display, minutes, ampm)
}
