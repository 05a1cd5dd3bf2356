// internal/followup/template/template.go
package template

import (
	"fmt"
	"strings"
	"time"

	"invoice-recovery/internal/followup/stage"
	"invoice-recovery/internal/models"

	"github.com/shopspring/decimal"
)

// Data carries everything a follow-up message interpolates. Rendering is
// deterministic: identical input always yields byte-identical output.
type Data struct {
	ClientName    string
	CompanyName   string
	InvoiceNumber string
	Amount        decimal.Decimal
	DueDate       time.Time
	DaysOverdue   int
}

func (d Data) dueDate() string {
	return d.DueDate.Format("2006-01-02")
}

// FormatCurrency renders an amount as a dollar figure with en-US thousands
// grouping, e.g. $12,345.60.
func FormatCurrency(amount decimal.Decimal) string {
	s := amount.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	dot := strings.Index(s, ".")
	intPart, fracPart := s[:dot], s[dot:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	if neg {
		return "-$" + b.String() + fracPart
	}
	return "$" + b.String() + fracPart
}

// Subject returns the stage's subject line. Subjects do not vary by tone.
func Subject(sc *stage.Config, data Data) string {
	switch sc.Stage {
	case 1:
		return fmt.Sprintf("Friendly Reminder: Invoice %s is due", data.InvoiceNumber)
	case 2:
		return fmt.Sprintf("Follow-up: Invoice %s — %d days overdue", data.InvoiceNumber, data.DaysOverdue)
	case 3:
		return fmt.Sprintf("Important: Invoice %s requires immediate attention", data.InvoiceNumber)
	case 4:
		return fmt.Sprintf("URGENT: Invoice %s — Final Notice", data.InvoiceNumber)
	default:
		return fmt.Sprintf("Invoice %s Payment Reminder", data.InvoiceNumber)
	}
}

// Body returns the message body for the stage and tone. There are exactly
// twelve variants (4 stages x 3 tones); unknown stages fall back to stage 1.
func Body(sc *stage.Config, tone models.TonePreference, data Data) string {
	amount := FormatCurrency(data.Amount)

	switch sc.Stage {
	case 1:
		return bodyStage1(tone, data, amount)
	case 2:
		return bodyStage2(tone, data, amount)
	case 3:
		return bodyStage3(tone, data, amount)
	case 4:
		return bodyStage4(tone, data, amount)
	default:
		return bodyStage1(tone, data, amount)
	}
}

func bodyStage1(tone models.TonePreference, data Data, amount string) string {
	if tone == models.ToneFriendly {
		return fmt.Sprintf(`Hi %s,

Hope you're doing well! Just a quick heads-up that invoice %s for %s was due on %s. It might have slipped through the cracks — no worries!

Could you take a moment to process the payment when you get a chance?

Thanks so much!
%s`, data.ClientName, data.InvoiceNumber, amount, data.dueDate(), data.CompanyName)
	}

	if tone == models.ToneProfessional {
		return fmt.Sprintf(`Dear %s,

This is a courteous reminder that invoice %s for %s was due on %s. We would appreciate your prompt attention to this matter.

If payment has already been sent, please disregard this notice.

Best regards,
%s`, data.ClientName, data.InvoiceNumber, amount, data.dueDate(), data.CompanyName)
	}

	// firm
	return fmt.Sprintf(`Dear %s,

Please be advised that invoice %s for %s was due on %s and is currently %d day(s) overdue.

We request that payment be processed at your earliest convenience.

Regards,
%s`, data.ClientName, data.InvoiceNumber, amount, data.dueDate(), data.DaysOverdue, data.CompanyName)
}

func bodyStage2(tone models.TonePreference, data Data, amount string) string {
	if tone == models.ToneFriendly {
		return fmt.Sprintf(`Hi %s,

We value our partnership and wanted to follow up on invoice %s for %s. It's been %d days since the due date of %s.

Most of our clients find it helpful to set up recurring payments — happy to assist if that's something you'd find useful!

Looking forward to hearing from you.
%s`, data.ClientName, data.InvoiceNumber, amount, data.DaysOverdue, data.dueDate(), data.CompanyName)
	}

	if tone == models.ToneProfessional {
		return fmt.Sprintf(`Dear %s,

As valued partners, we want to bring to your attention that invoice %s for %s is now %d days past due (original due date: %s).

Timely payments help us maintain the quality of service you've come to expect. We would appreciate your prompt response.

Best regards,
%s`, data.ClientName, data.InvoiceNumber, amount, data.DaysOverdue, data.dueDate(), data.CompanyName)
	}

	// firm
	return fmt.Sprintf(`Dear %s,

This is our second notice regarding invoice %s for %s, which has been outstanding for %d days past the due date of %s.

Per our standard terms, we expect payment to be processed promptly. Please respond with a payment timeline.

Regards,
%s`, data.ClientName, data.InvoiceNumber, amount, data.DaysOverdue, data.dueDate(), data.CompanyName)
}

func bodyStage3(tone models.TonePreference, data Data, amount string) string {
	if tone == models.ToneFriendly {
		return fmt.Sprintf(`Hi %s,

I'm reaching out again about invoice %s for %s — it's been %d days overdue now. I understand things get busy, but I wanted to make sure everything is okay on your end.

If there's an issue with the invoice or you need to discuss a payment plan, I'm here to help!

Please let me know.
%s`, data.ClientName, data.InvoiceNumber, amount, data.DaysOverdue, data.CompanyName)
	}

	if tone == models.ToneProfessional {
		return fmt.Sprintf(`Dear %s,

This is an important reminder that invoice %s for %s remains unpaid, now %d days past the due date of %s.

Please treat this matter as urgent. If there are any disputes or concerns, we ask that you contact us immediately so we can resolve them.

Failure to respond may result in escalation of this matter.

Best regards,
%s`, data.ClientName, data.InvoiceNumber, amount, data.DaysOverdue, data.dueDate(), data.CompanyName)
	}

	// firm
	return fmt.Sprintf(`Dear %s,

IMPORTANT: Invoice %s for %s is now %d days overdue. Despite our previous reminders, we have not received payment or a response.

We require immediate payment or a written response outlining your payment plan within 48 hours. Without resolution, we will be forced to take further action.

Regards,
%s`, data.ClientName, data.InvoiceNumber, amount, data.DaysOverdue, data.CompanyName)
}

func bodyStage4(tone models.TonePreference, data Data, amount string) string {
	if tone == models.ToneFriendly {
		return fmt.Sprintf(`Hi %s,

This is a final notice regarding invoice %s for %s, which is now %d days overdue. We've reached out several times and haven't heard back.

We'd really like to resolve this before taking any formal steps. Please reach out today so we can find a solution together.

Thank you for your attention to this.
%s`, data.ClientName, data.InvoiceNumber, amount, data.DaysOverdue, data.CompanyName)
	}

	if tone == models.ToneProfessional {
		return fmt.Sprintf(`Dear %s,

FINAL NOTICE

Invoice %s for %s has been outstanding for %d days. This is our final attempt to resolve this matter amicably.

If full payment or a formal payment arrangement is not received within 5 business days, we will be compelled to escalate this matter to our collections department.

We strongly encourage you to contact us immediately to avoid further action.

Best regards,
%s`, data.ClientName, data.InvoiceNumber, amount, data.DaysOverdue, data.CompanyName)
	}

	// firm
	return fmt.Sprintf(`Dear %s,

FINAL DEMAND

This serves as our final demand for payment of invoice %s in the amount of %s, overdue by %d days.

You have 5 business days from the date of this notice to remit full payment. Failure to do so will result in:
• Referral to our collections department
• Potential legal proceedings
• Reporting to credit agencies

Contact us immediately to make payment arrangements.

Regards,
%s`, data.ClientName, data.InvoiceNumber, amount, data.DaysOverdue, data.CompanyName)
}
