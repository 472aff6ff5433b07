package lookup

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/prodlookup/pkg/loader"
)

// Messages holds the user-visible texts for load failures. Status is a
// format taking the HTTP status code and Error wraps the reason.
type Messages struct {
	Error     string
	Status    string
	NotArray  string
	Transport string
}

// DefaultMessages are the Uzbek texts of the profile page.
var DefaultMessages = Messages{
	Error:     "Xatolik: %s (URL, ruxsatlar yoki CORS-ni tekshiring)",
	Status:    "Tarmoq xatosi: %d",
	NotArray:  "Noto‘g‘ri format: JSON massiv emas.",
	Transport: "Tarmoqqa ulanib bo‘lmadi",
}

// withDefaults fills blank texts from DefaultMessages.
func (m Messages) withDefaults() Messages {
	if m.Error == "" {
		m.Error = DefaultMessages.Error
	}
	if m.Status == "" {
		m.Status = DefaultMessages.Status
	}
	if m.NotArray == "" {
		m.NotArray = DefaultMessages.NotArray
	}
	if m.Transport == "" {
		m.Transport = DefaultMessages.Transport
	}
	return m
}

// Format turns a load error into the single line shown to the user.
func (m Messages) Format(err error) string {
	if err == nil {
		return ""
	}
	m = m.withDefaults()

	var reason string
	switch kind, code := loader.Classify(err); kind {
	case loader.KindStatus:
		reason = fmt.Sprintf(m.Status, code)
	case loader.KindNotArray:
		reason = m.NotArray
	case loader.KindTransport:
		reason = m.Transport
	default:
		reason = err.Error()
	}
	if !strings.Contains(m.Error, "%s") {
		return m.Error + " " + reason
	}
	return fmt.Sprintf(m.Error, reason)
}
