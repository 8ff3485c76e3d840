package models

import "github.com/google/uuid"

// Parameter is a characteristic name shared across variants ("color", "size").
type Parameter struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name string    `gorm:"column:name;not null;uniqueIndex"`
}

// VariantParameter holds one parameter value for one variant.
type VariantParameter struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	VariantID   uuid.UUID `gorm:"column:variant_id;type:uuid;not null;uniqueIndex:ux_variant_parameters_pair"`
	ParameterID uuid.UUID `gorm:"column:parameter_id;type:uuid;not null;uniqueIndex:ux_variant_parameters_pair"`
	Value       string    `gorm:"column:value;not null"`
	Parameter   Parameter `gorm:"foreignKey:ParameterID"`
}
