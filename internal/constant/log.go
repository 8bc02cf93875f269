package constant

const (
	LogActionLogin = 1 + iota
	LogActionLogout
)

const (
	LogActionCreateApplication = 11 + iota
	LogActionUpdateApplication
	LogActionDeleteApplication
)

const (
	LogActionRenderWord = 21 + iota
	LogActionRenderSpreadsheet
	LogActionSpliceTemplate
	LogActionPreviewHTML
	LogActionDownloadDocument
)

const (
	LogActionUploadTemplate = 31 + iota
	LogActionDeleteTemplate
)

const (
	LogActionSendMail = 41 + iota
)
