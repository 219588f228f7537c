// redact маскирует чувствительные значения перед записью в лог.
package redact

import "strings"

// Email оставляет два первых символа локальной части и домен.
func Email(s string) string {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return "***"
	}

	local, domain := parts[0], parts[1]
	if len(local) > 2 {
		local = local[:2] + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Identifier маскирует логин: e-mail — через Email, username — по первому символу.
func Identifier(s string) string {
	if strings.Contains(s, "@") {
		return Email(s)
	}

	r := []rune(s)
	if len(r) == 0 {
		return ""
	}

	return string(r[:1]) + "***"
}

// Token показывает только хвост токена, чтобы различать токены в логах.
func Token(s string) string {
	if len(s) < 12 {
		return "[REDACTED_TOKEN]"
	}

	return "[REDACTED_TOKEN]…" + s[len(s)-4:]
}
