package mail

import "fmt"

// VerificationEmail собирает письмо с кодом подтверждения.
func VerificationEmail(code string, ttlMinutes int) (subject, body string) {
	subject = "Подтверждение регистрации"
	body = fmt.Sprintf(
		`<p>Ваш код подтверждения: <b>%s</b></p>
<p>Код действует %d минут. Если вы не регистрировались, просто проигнорируйте это письмо.</p>`,
		code, ttlMinutes,
	)
	return subject, body
}

// WelcomeEmail собирает приветственное письмо после подтверждения аккаунта.
func WelcomeEmail(fullName string) (subject, body string) {
	subject = "Добро пожаловать!"
	body = fmt.Sprintf(
		`<p>Здравствуйте, %s!</p>
<p>Ваш аккаунт подтверждён. Начните с создания плана отказа от курения - каждый день без сигарет уже победа.</p>`,
		fullName,
	)
	return subject, body
}
