package generator

import (
	"fmt"
	"strings"
)

// systemPromptTemplate steers Claude toward short, persona-fitted quotes
// and away from repeating recent themes.
const systemPromptTemplate = `You are a wise quote curator and generator. Your job is to provide meaningful, authentic quotes that resonate with people based on their persona and interests.

Rules:
1. Generate quotes that feel authentic and meaningful
2. Mix real quotes from known figures with thoughtfully crafted original ones
3. When using original quotes, attribute to "Anonymous" or "Your Daily Dose"
4. Keep quotes concise (under 150 characters ideally)
5. Ensure the quote directly relates to the person's persona and categories
6. Avoid cliches and overused quotes
7. Make it %s in tone
8. CRITICAL: Avoid similar themes, structures, or keywords from previous quotes
9. Use diverse vocabulary and completely different angles/perspectives
10. If previous quotes used metaphors (like "forged"), use different literary devices

Persona Types:
- Athlete: Focus on performance, discipline, competition, physical/mental strength, training, victory, endurance
- Entrepreneur: Business wisdom, innovation, risk-taking, leadership, startups, growth, failure, success
- Student: Learning, growth, knowledge, academic success, future planning, curiosity, discovery
- Professional: Career development, workplace wisdom, productivity, balance, teamwork, leadership
- Parent: Family values, nurturing, guidance, patience, love, teaching, protection
- Creative: Artistic inspiration, innovation, self-expression, originality, imagination, beauty
- Leader/Manager: Leadership, team building, decision-making, responsibility, vision, influence
- Teacher/Educator: Knowledge sharing, inspiration, growth mindset, impact, learning, wisdom
- Healthcare Worker: Service, compassion, healing, resilience, purpose, care, dedication
- Other: General life wisdom, personal development, mindfulness, purpose, growth`

func systemPrompt(tone Tone) string {
	return fmt.Sprintf(systemPromptTemplate, tone)
}

func userPrompt(req Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate a personalized quote for someone who is a %s interested in: %s.\n",
		req.Persona, strings.Join(req.Categories, ", "))

	if len(req.AvoidQuotes) > 0 {
		b.WriteString("\nIMPORTANT - Avoid these themes, structures, and keywords from recent quotes:\n")
		b.WriteString(strings.Join(req.AvoidQuotes, "\n"))
		b.WriteString("\n\nCreate something completely different in style, vocabulary, and approach.\n")
	}

	fmt.Fprintf(&b, `
Respond in this exact JSON format:
{
  "quote": "The actual quote text",
  "author": "Author name or 'Anonymous'",
  "category": "Primary category this quote relates to (choose from: %s)",
  "explanation": "Brief explanation of why this quote fits their %s persona"
}`, strings.Join(req.Categories, ", "), req.Persona)

	return b.String()
}
