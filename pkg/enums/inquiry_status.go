package enums

// InquiryStatus tracks the owner's follow-up on a quote inquiry.
type InquiryStatus string

const (
	InquiryStatusPending   InquiryStatus = "pending"
	InquiryStatusContacted InquiryStatus = "contacted"
	InquiryStatusQuoted    InquiryStatus = "quoted"
	InquiryStatusClosed    InquiryStatus = "closed"
)

var validInquiryStatuses = []InquiryStatus{InquiryStatusPending, InquiryStatusContacted, InquiryStatusQuoted, InquiryStatusClosed}

func (v InquiryStatus) String() string { return string(v) }

func (v InquiryStatus) IsValid() bool { return known(validInquiryStatuses, v) }

func ParseInquiryStatus(value string) (InquiryStatus, error) {
	return parse(validInquiryStatuses, value, "inquiry status")
}
