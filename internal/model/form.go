package model

import (
	"sort"
)

type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldTextarea FieldKind = "textarea"
	FieldURL      FieldKind = "url"
	FieldNumber   FieldKind = "number"
	FieldSelect   FieldKind = "select"
	FieldCheckbox FieldKind = "checkbox"
)

// FieldDescriptor 活动投稿表单中的一个自定义字段
type FieldDescriptor struct {
	Key           string    `json:"key" binding:"required"`
	Label         string    `json:"label" binding:"required"`
	Kind          FieldKind `json:"kind" binding:"required,oneof=text textarea url number select checkbox"`
	Required      bool      `json:"required"`
	Enabled       bool      `json:"enabled"`
	PublicVisible bool      `json:"publicVisible"`
	Order         int       `json:"order"`
	Options       []string  `json:"options,omitempty"`
}

// SubmissionForm 按 Order 排序的字段列表
type SubmissionForm []FieldDescriptor

func (f SubmissionForm) Sorted() SubmissionForm {
	out := make(SubmissionForm, len(f))
	copy(out, f)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

func (f SubmissionForm) Lookup(key string) (FieldDescriptor, bool) {
	for _, d := range f {
		if d.Key == key {
			return d, true
		}
	}
	return FieldDescriptor{}, false
}
