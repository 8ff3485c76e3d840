package models

// Category keys off the supplier-assigned integer id so price lists from
// different shops converge on the same taxonomy rows.
type Category struct {
	ID    int64  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Name  string `gorm:"column:name;not null"`
	Shops []Shop `gorm:"many2many:shop_categories"`
}
