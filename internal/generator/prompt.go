package generator

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a senior B2B copywriter. You write short, specific outreach that starts
from the recipient's role and company, never from the product. Active voice only; no
"hope", "looking forward" or "would you have time" phrasing.`

// closingFormula is the fixed call to action of the last email.
const closingFormula = `Offer to run a free simulation for the recipient's company first: if the numbers
do not meet the bar, there is nothing further to discuss. Ask them to reply and promise
results within three days.`

func buildPrompt(contact ContactProfile, product ProductInfo) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Recipient:\n- Name: %s\n- Title: %s\n- Company: %s\n- Notes: %s\n\n",
		contact.Name, orUnknown(contact.Title), orUnknown(contact.Company), orNone(contact.Notes))
	fmt.Fprintf(&b, "Product:\n- Name: %s\n- Value proposition: %s\n- Details: %s\n- Target segment: %s\n\n",
		product.Name, product.PitchHeadline, product.PitchBody, product.TargetSegment)

	b.WriteString(`Write one personalized sequence:
1. LinkedIn opener (under 200 words): open on a concrete pain point of the title/company
   and ask one sharp question. Do not name the product.
2. Email 1 subject + body (about 150 words): subject starts with a number or is a question;
   body cites one industry pain-point figure and asks whether they see it.
3. Email 2 subject + body (about 200 words): an ROI case told in numbers (time, headcount,
   cost or revenue).
4. Email 3 subject + body (about 150 words): a closing email. `)
	b.WriteString(closingFormula)
	b.WriteString(`

Every message must relate directly to the recipient's title.

Reply with JSON only:
{"linkedin": "...", "email_subject1": "...", "email1": "...", "email_subject2": "...", "email2": "...", "email_subject3": "...", "email3": "..."}`)

	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
