package models

// UploadedFile - описание загруженного файла в ответе /user/upload
type UploadedFile struct {
	FieldName    string `json:"fieldname"`
	OriginalName string `json:"originalname"`
	Filename     string `json:"filename"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimetype"`
	URL          string `json:"url"`
}

type UploadResponse struct {
	Message string        `json:"message"`
	File    *UploadedFile `json:"file"`
}
