package types

// GreekForm is the grammatical identity of one occurrence selected for study.
// It is embedded into TrainingUnit and never mutated after generation.
type GreekForm struct {
	SurfaceText         string `gorm:"column:surface_text" json:"surface_text"`
	Transliteration     string `gorm:"column:transliteration" json:"transliteration"`
	Lemma               string `gorm:"column:lemma" json:"lemma"`
	MorphologyCode      string `gorm:"column:morphology_code" json:"morphology_code"`
	Gloss               string `gorm:"column:gloss" json:"gloss"`
	GrammaticalCategory string `gorm:"column:grammatical_category" json:"grammatical_category"`
}
