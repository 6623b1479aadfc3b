package models

import "fmt"

// Логические коллекции внутри одного хранилища документов
const (
	CollectionUser     = "user"
	CollectionPlan     = "plan"
	CollectionPurchase = "purchases"
)

// Document - общие поля каждого хранимого документа
type Document struct {
	ID         string `json:"_id,omitempty"`
	Rev        string `json:"_rev,omitempty"`
	Collection string `json:"collection,omitempty"`
}

// DocResponse - ответ хранилища на create/replace/delete
type DocResponse struct {
	OK  bool   `json:"ok"`
	ID  string `json:"id"`
	Rev string `json:"rev"`
}

// ListResponse - ответ на запросы списка
type ListResponse[T any] struct {
	Docs  []T `json:"docs"`
	Total int `json:"total"`
}

// GatewayData - тело ответа платежного шлюза, сохраненное как есть
type GatewayData map[string]any

// String возвращает строковое значение поля или "" если его нет
func (d GatewayData) String(key string) string {
	if d == nil {
		return ""
	}
	switch v := d[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Meta дает репозиториям доступ к служебным полям встроенного Document
func (d *Document) Meta() *Document {
	return d
}
