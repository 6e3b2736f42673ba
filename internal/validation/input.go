package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength  = 3
	MaxUsernameLength  = 30
	MinFullNameLength  = 2
	MaxFullNameLength  = 100
	MaxNoteLength      = 1000
	MinPostTitleLength = 3
	MaxPostTitleLength = 200
	MinPostBodyLength  = 1
	MaxPostBodyLength  = 5000
	MaxCommentLength   = 2000
	MaxReasonLength    = 500
	VerificationCodeLength = 6
	MinCigarettesPerDay    = 1
	MaxCigarettesPerDay    = 200
	MaxPricePerPack        = 100000.0
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	if !strings.Contains(email, "@") {
		return fmt.Errorf("email должен содержать символ @")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	if !strings.Contains(domainPart, ".") {
		return fmt.Errorf("доменная часть email должна содержать точку")
	}

	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	if len(username) > 0 && unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}

// ValidateFullName проверяет полное имя пользователя.
func ValidateFullName(fullName string) error {
	if fullName == "" {
		return fmt.Errorf("полное имя обязательно")
	}
	return ValidateLength("полное имя", strings.TrimSpace(fullName), MinFullNameLength, MaxFullNameLength)
}

// ValidatePhone проверяет телефонный номер в международном формате.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}

	phoneRegex := regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("некорректный формат телефона")
	}
	return nil
}

// ValidateGender проверяет значение пола.
func ValidateGender(gender string) error {
	switch gender {
	case "", "male", "female", "other":
		return nil
	}
	return fmt.Errorf("пол должен быть male, female или other")
}

// ValidateDateOfBirth проверяет дату рождения в формате YYYY-MM-DD.
func ValidateDateOfBirth(dob string) error {
	if dob == "" {
		return nil
	}

	parsed, err := time.Parse("2006-01-02", dob)
	if err != nil {
		return fmt.Errorf("дата рождения должна быть в формате YYYY-MM-DD")
	}

	if parsed.After(time.Now()) {
		return fmt.Errorf("дата рождения не может быть в будущем")
	}
	return nil
}

// ValidateVerificationCode проверяет формат кода подтверждения.
func ValidateVerificationCode(code string) error {
	if len(code) != VerificationCodeLength {
		return fmt.Errorf("код подтверждения должен состоять из %d цифр", VerificationCodeLength)
	}
	for _, char := range code {
		if !unicode.IsDigit(char) {
			return fmt.Errorf("код подтверждения должен содержать только цифры")
		}
	}
	return nil
}

// ValidateMood проверяет значение настроения по шкале от 1 до 5.
func ValidateMood(mood int) error {
	if mood < 1 || mood > 5 {
		return fmt.Errorf("настроение должно быть от 1 до 5")
	}
	return nil
}

// ValidateCravingLevel проверяет уровень тяги по шкале от 0 до 10.
func ValidateCravingLevel(level int) error {
	if level < 0 || level > 10 {
		return fmt.Errorf("уровень тяги должен быть от 0 до 10")
	}
	return nil
}

// ValidateCigarettesPerDay проверяет количество сигарет в день.
func ValidateCigarettesPerDay(count int) error {
	if count < MinCigarettesPerDay || count > MaxCigarettesPerDay {
		return fmt.Errorf("количество сигарет в день должно быть от %d до %d", MinCigarettesPerDay, MaxCigarettesPerDay)
	}
	return nil
}
