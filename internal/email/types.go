package email

// Email представляет структуру email сообщения
type Email struct {
	FromEmail string
	FromName  string
	ToEmail   string
	ToName    string // необязательно
	Subject   string
	HTMLBody  string
	TextBody  string
}
