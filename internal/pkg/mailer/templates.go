package mailer

import "fmt"

func AccessLink(to, vendorName, link string) Message {
	return Message{
		To:      to,
		Subject: "הזמנה להשלמת פרטי ספק",
		Body: fmt.Sprintf("שלום %s,\n\nנפתחה עבורך בקשה להקמת ספק. להשלמת הפרטים והעלאת המסמכים:\n%s\n\nתודה.",
			vendorName, link),
	}
}

func SubmissionNotice(to, vendorName, requestID string) Message {
	return Message{
		To:      to,
		Subject: fmt.Sprintf("הספק %s השלים את הטופס", vendorName),
		Body:    fmt.Sprintf("הספק %s הגיש את טופס ההקמה (בקשה %s) והוא ממתין לאישור.", vendorName, requestID),
	}
}

func ApprovalNotice(to, vendorName string) Message {
	return Message{
		To:      to,
		Subject: "הקמת הספק אושרה",
		Body:    fmt.Sprintf("שלום %s,\n\nהקמת הספק אושרה. מעתה ניתן להעלות קבלות דרך הפורטל.", vendorName),
	}
}

func QuoteLink(to, title, link string) Message {
	return Message{
		To:      to,
		Subject: "בקשה להצעת מחיר: " + title,
		Body:    fmt.Sprintf("שלום,\n\nנשמח לקבל הצעת מחיר עבור: %s\nלהגשת ההצעה:\n%s", title, link),
	}
}

func OTPCode(to, code string, minutes int) Message {
	return Message{
		To:      to,
		Subject: "קוד אימות",
		Body:    fmt.Sprintf("קוד האימות שלך הוא %s. הקוד בתוקף ל-%d דקות.", code, minutes),
	}
}
