package validation

import "regexp"

// Field names reported in Errors.
const (
	FieldName            = "name"
	FieldMobileNumber    = "mobileNumber"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
)

const (
	msgEmailRequired    = "Please enter your email id."
	msgEmailFormat      = "Please enter the email in correct format."
	msgPasswordRequired = "Please enter your password."
	msgNameRequired     = "Please enter your name."
	msgMobileLength     = "Please enter your 10 digit mobile number."
	msgConfirmRequired  = "Please enter your confirm password."
	msgConfirmMismatch  = "Your password and confirm password are different."
)

const mobileDigits = 10

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Errors maps a field name to a human readable message. An empty map means
// the submission is valid.
type Errors map[string]string

// Valid reports whether no field produced an error.
func (e Errors) Valid() bool {
	return len(e) == 0
}

// IsValidEmail reports whether s looks like local@domain.tld.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// ValidateSignIn checks the sign-in form.
func ValidateSignIn(email, password string) Errors {
	errs := Errors{}
	checkEmail(errs, email)
	if password == "" {
		errs[FieldPassword] = msgPasswordRequired
	}
	return errs
}

// ValidateSignUp checks the sign-up form. Every field is checked
// independently so all failing fields are reported together.
func ValidateSignUp(name, mobile, email, password, confirmPassword string) Errors {
	errs := Errors{}
	if name == "" {
		errs[FieldName] = msgNameRequired
	}
	if !isMobileNumber(mobile) {
		errs[FieldMobileNumber] = msgMobileLength
	}
	checkEmail(errs, email)
	if password == "" {
		errs[FieldPassword] = msgPasswordRequired
	}
	switch {
	case confirmPassword == "":
		errs[FieldConfirmPassword] = msgConfirmRequired
	case confirmPassword != password:
		errs[FieldConfirmPassword] = msgConfirmMismatch
	}
	return errs
}

func checkEmail(errs Errors, email string) {
	switch {
	case email == "":
		errs[FieldEmail] = msgEmailRequired
	case !IsValidEmail(email):
		errs[FieldEmail] = msgEmailFormat
	}
}

func isMobileNumber(s string) bool {
	if len(s) != mobileDigits {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
