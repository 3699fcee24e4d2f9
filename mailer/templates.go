package mailer

import "fmt"

func AdminVerificationEmail(code string) (string, string) {
	return "Verify your admin account", fmt.Sprintf("Your OTP is: <b>%s</b>", code)
}

func UserVerificationEmail(code string) (string, string) {
	return "Verify your account", fmt.Sprintf("Your OTP is: <b>%s</b>", code)
}

func AdminResetEmail(code string) (string, string) {
	return "Reset Admin Password", fmt.Sprintf("Your OTP is: <b>%s</b>", code)
}

func UserResetEmail(code string) (string, string) {
	return "Reset Password", fmt.Sprintf("Your OTP is: <b>%s</b>", code)
}
