package audit

import (
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Logger writes account business events as structured log lines tagged
// audit=true. Its Record method matches auth.Service.WithAudit.
type Logger struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// Record logs one event. Fields named "email" are masked. Failed results
// are logged at warn level.
func (l *Logger) Record(action string, fields map[string]string) {
	evt := l.log.Info()
	if isFailure(fields["result"]) || strings.HasSuffix(action, "_failed") {
		evt = l.log.Warn()
	}
	evt = evt.Str("action", action)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := fields[k]
		if k == "email" {
			v = maskEmail(v)
		}
		evt = evt.Str(k, v)
	}
	evt.Msg("audit")
}

func isFailure(result string) bool {
	return result != "" && result != "success"
}

// maskEmail keeps the first two characters of the local part and the domain.
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return email[:2] + "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
