package maintenance

import "errors"

var (
	ErrPlanNotFound       = errors.New("maintenance plan not found")
	ErrEquipmentNotFound  = errors.New("equipment not found")
	ErrLocationUnresolved = errors.New("equipment location hierarchy is incomplete")
	ErrUserNotFound       = errors.New("user not found")
)
