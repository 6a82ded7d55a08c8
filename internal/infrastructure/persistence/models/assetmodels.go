package models

// EquipmentModel, LocationModel and UserModel are read-only views of tables
// owned by the asset and identity subsystems.

type EquipmentModel struct {
	ID         uint   `gorm:"primaryKey"`
	TenantID   uint   `gorm:"not null;default:0;index"`
	Tag        string `gorm:"size:50;not null;index"`
	Name       string `gorm:"size:200;not null;default:''"`
	LocationID *uint  `gorm:"index"`
}

func (EquipmentModel) TableName() string {
	return "equipments"
}

type LocationModel struct {
	ID     uint   `gorm:"primaryKey"`
	Name   string `gorm:"size:200;not null"`
	SiteID *uint
	ZoneID *uint
}

func (LocationModel) TableName() string {
	return "locations"
}

type UserModel struct {
	ID    uint   `gorm:"primaryKey"`
	Name  string `gorm:"size:150;not null;default:''"`
	Email string `gorm:"size:255;not null;default:''"`
}

func (UserModel) TableName() string {
	return "users"
}
