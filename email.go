package main

import (
	"errors"
	"fmt"
	"net/smtp"
	"os"
)

func sendEmail(to string, subject string, body string) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return errors.New("smtp not configured")
	}

	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}

	from := os.Getenv("SMTP_FROM")
	auth := smtp.PlainAuth("", os.Getenv("SMTP_USER"), os.Getenv("SMTP_PASSWORD"), host)

	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", from, to, subject, body)

	return smtp.SendMail(host+":"+port, auth, from, []string{to}, []byte(message))
}

func SendShopRejectionEmail(to string, shopName string, reason string) error {
	body := fmt.Sprintf(
		"Hello,\n\nYour shop %q was not approved.\n\nReason: %s\n\nYou may update your details and documents and submit again.",
		shopName, reason)

	return sendEmail(to, "Shop application rejected", body)
}

func SendOrderRejectionEmail(to string, orderCodename string, reason string) error {
	body := fmt.Sprintf(
		"Hello,\n\nYour order %s was rejected by the shop.\n\nReason: %s",
		orderCodename, reason)

	return sendEmail(to, "Order "+orderCodename+" rejected", body)
}
