package validation

import "testing"

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"валидный пароль", "Password123", false},
		{"слишком короткий", "Pass1", true},
		{"без заглавных", "password123", true},
		{"без строчных", "PASSWORD123", true},
		{"без цифр", "PasswordABC", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"user@example.com", false},
		{"USER@EXAMPLE.COM", false},
		{"user+tag@sub.example.com", false},
		{"", true},
		{"без-собаки", true},
		{"user@@example.com", true},
		{"user@localhost", true},
		{"пользователь@example.com", true},
	}

	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEmail(%q) = %v, wantErr %v", tt.email, err, tt.wantErr)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		username string
		wantErr  bool
	}{
		{"ivan_petrov", false},
		{"Ivan123", false},
		{"ab", true},
		{"1ivan", true},
		{"ivan petrov", true},
		{"иван", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateUsername(tt.username)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateUsername(%q) = %v, wantErr %v", tt.username, err, tt.wantErr)
		}
	}
}

func TestValidateVerificationCode(t *testing.T) {
	tests := []struct {
		code    string
		wantErr bool
	}{
		{"123456", false},
		{"000000", false},
		{"12345", true},
		{"1234567", true},
		{"12345a", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateVerificationCode(tt.code)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateVerificationCode(%q) = %v, wantErr %v", tt.code, err, tt.wantErr)
		}
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone   string
		wantErr bool
	}{
		{"", false},
		{"+79161234567", false},
		{"89161234567", false},
		{"+7 916 123 45 67", true},
		{"abc", true},
	}

	for _, tt := range tests {
		err := ValidatePhone(tt.phone)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePhone(%q) = %v, wantErr %v", tt.phone, err, tt.wantErr)
		}
	}
}
