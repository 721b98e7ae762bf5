package banklink

// Field names shared by the IPizza protocol family. Individual variants pick
// which of these exist; none of the core logic depends on a specific set
// beyond the MAC, nonce and date/time fields below.
const (
	FieldMAC      = "VK_MAC"
	FieldNonce    = "VK_NONCE"
	FieldDateTime = "VK_DATETIME"
	FieldDate     = "VK_DATE"
	FieldTime     = "VK_TIME"

	FieldService  = "VK_SERVICE"
	FieldVersion  = "VK_VERSION"
	FieldSenderID = "VK_SND_ID"
	FieldRecvID   = "VK_REC_ID"
	FieldStamp    = "VK_STAMP"
	FieldAmount   = "VK_AMOUNT"
	FieldCurrency = "VK_CURR"
	FieldRef      = "VK_REF"
	FieldMessage  = "VK_MSG"
	FieldReturn   = "VK_RETURN"
	FieldCancel   = "VK_CANCEL"
	FieldTxNo     = "VK_T_NO"
	FieldUserName = "VK_USER_NAME"
	FieldUserID   = "VK_USER_ID"
	FieldRID      = "VK_RID"
)

// Timestamp layouts used by the freshness and consistency verifiers.
// VK_DATETIME follows ISO 8601 with a numeric zone; the legacy split fields
// use the Estonian banklink day-first forms.
const (
	DateTimeLayout = "2006-01-02T15:04:05-0700"
	DateLayout     = "02.01.2006"
	TimeLayout     = "15:04:05"
)
