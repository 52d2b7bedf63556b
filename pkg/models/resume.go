package models

// SectionType values used by SectionMeta and CustomSection
const (
	SectionTypePersonalInfo = "personalInfo"
	SectionTypeText         = "text"
	SectionTypeItemList     = "itemList"
	SectionTypeStringList   = "stringList"
)

// ResumeData is the structured form of a parsed resume
type ResumeData struct {
	PersonalInfo     PersonalInfo             `json:"personalInfo"`
	Summary          string                   `json:"summary"`
	WorkExperience   []Experience             `json:"workExperience" validate:"dive"`
	Education        []Education              `json:"education" validate:"dive"`
	PersonalProjects []Project                `json:"personalProjects" validate:"dive"`
	Additional       AdditionalInfo           `json:"additional"`
	SectionMeta      []SectionMeta            `json:"sectionMeta" validate:"dive"`
	CustomSections   map[string]CustomSection `json:"customSections" validate:"dive,keys,section_key,endkeys,required"`
}

// PersonalInfo holds contact details. Email is not format-checked; resumes carry
// obfuscated or partial addresses often enough.
type PersonalInfo struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Website  string `json:"website"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
}

type Experience struct {
	ID          int      `json:"id" validate:"gte=0"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Years       string   `json:"years"`
	Description []string `json:"description"`
}

type Education struct {
	ID          int    `json:"id" validate:"gte=0"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Years       string `json:"years"`
	Description string `json:"description"`
}

type Project struct {
	ID          int      `json:"id" validate:"gte=0"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Years       string   `json:"years"`
	Description []string `json:"description"`
}

type AdditionalInfo struct {
	TechnicalSkills        []string `json:"technicalSkills"`
	Languages              []string `json:"languages"`
	CertificationsTraining []string `json:"certificationsTraining"`
	Awards                 []string `json:"awards"`
}

// SectionMeta describes how a resume section is displayed
type SectionMeta struct {
	ID          string `json:"id"`
	Key         string `json:"key" validate:"required"`
	DisplayName string `json:"displayName" validate:"required"`
	SectionType string `json:"sectionType" validate:"required,oneof=personalInfo text itemList stringList"`
	IsDefault   bool   `json:"isDefault"`
	IsVisible   bool   `json:"isVisible"`
	Order       int    `json:"order" validate:"gte=0"`
}

// CustomSection holds a section outside the fixed schema. Which content field is
// used depends on SectionType.
type CustomSection struct {
	SectionType string       `json:"sectionType" validate:"required,oneof=text itemList stringList"`
	Text        string       `json:"text,omitempty"`
	Items       []CustomItem `json:"items,omitempty" validate:"dive"`
	Strings     []string     `json:"strings,omitempty"`
}

// CustomItem is an entry of an itemList custom section
type CustomItem struct {
	ID          int      `json:"id" validate:"gte=0"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	Location    string   `json:"location"`
	Years       string   `json:"years"`
	Description []string `json:"description"`
}
