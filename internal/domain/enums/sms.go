package enums

// SMSType is the message class accepted by the SMS provider.
type SMSType string

const (
	SMSTypeSMS SMSType = "SMS"
	SMSTypeLMS SMSType = "LMS"
)

// SMSContentType distinguishes marketing from transactional messages.
type SMSContentType string

const (
	SMSContentComm SMSContentType = "COMM"
	SMSContentAd   SMSContentType = "AD"
)
