package utils

import "strings"

// WhatsAppPrefix is the Twilio address scheme for WhatsApp recipients
const WhatsAppPrefix = "whatsapp:"

// StripWhatsAppPrefix turns a Twilio address into a bare sender identifier
func StripWhatsAppPrefix(address string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(address), WhatsAppPrefix))
}

// WhatsAppAddress restores the Twilio scheme for an outbound recipient
func WhatsAppAddress(phone string) string {
	phone = StripWhatsAppPrefix(phone)
	return WhatsAppPrefix + phone
}
