package reference

import "strings"

var cities = []string{
	"אופקים", "אור יהודה", "אור עקיבא", "אילת", "אלעד", "אריאל", "אשדוד", "אשקלון",
	"באר יעקב", "באר שבע", "בית שאן", "בית שמש", "ביתר עילית", "בני ברק", "בת ים",
	"גבעת שמואל", "גבעתיים", "דימונה", "הוד השרון", "הרצליה", "זכרון יעקב", "חדרה",
	"חולון", "חיפה", "טבריה", "טירת כרמל", "יבנה", "יהוד-מונוסון", "יקנעם עילית",
	"ירושלים", "כפר יונה", "כפר סבא", "כרמיאל", "לוד", "מבשרת ציון", "מגדל העמק",
	"מודיעין-מכבים-רעות", "מודיעין עילית", "מעלה אדומים", "מעלות-תרשיחא", "נהריה",
	"נס ציונה", "נצרת", "נשר", "נתיבות", "נתניה", "עכו", "עפולה", "ערד", "פתח תקווה",
	"צפת", "קריית אונו", "קריית אתא", "קריית ביאליק", "קריית גת", "קריית ים",
	"קריית מוצקין", "קריית מלאכי", "קריית שמונה", "ראש העין", "ראשון לציון", "רהט",
	"רחובות", "רמלה", "רמת גן", "רמת השרון", "רעננה", "שדרות", "שוהם", "תל אביב-יפו",
}

var cityIndex = func() map[string]struct{} {
	m := make(map[string]struct{}, len(cities))
	for _, c := range cities {
		m[c] = struct{}{}
	}
	return m
}()

// Cities returns the city list in display order.
func Cities() []string {
	out := make([]string, len(cities))
	copy(out, cities)
	return out
}

// IsKnownCity reports whether name is on the city list, ignoring surrounding space.
func IsKnownCity(name string) bool {
	_, ok := cityIndex[strings.TrimSpace(name)]
	return ok
}
