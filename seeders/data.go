package seeders

import "equipment-system/internal/dto"

var warehouseItemsData = []dto.CreateWarehouseItemDTO{
	{EquipmentType: "Laptop", Quantity: 12, MinThreshold: 5},
	{EquipmentType: "Monitor", Quantity: 20, MinThreshold: 6},
	{EquipmentType: "Printer", Quantity: 3, MinThreshold: 2},
	{EquipmentType: "Router", Quantity: 4, MinThreshold: 2},
	{EquipmentType: "UPS", Quantity: 2, MinThreshold: 3},
	{EquipmentType: "Scanner", Quantity: 1, MinThreshold: 1},
}

var equipmentsData = []dto.CreateEquipmentDTO{
	{Code: "LT-0001", Name: "Lenovo ThinkPad T14", Type: "Laptop", Price: 1150},
	{Code: "LT-0002", Name: "Lenovo ThinkPad T14", Type: "Laptop", Price: 1150},
	{Code: "LT-0003", Name: "Dell Latitude 5440", Type: "Laptop", Price: 1080},
	{Code: "MN-0001", Name: "Dell P2422H", Type: "Monitor", Price: 210},
	{Code: "MN-0002", Name: "Dell P2422H", Type: "Monitor", Price: 210},
	{Code: "PR-0001", Name: "HP LaserJet Pro M404", Type: "Printer", Price: 330},
	{Code: "RT-0001", Name: "MikroTik hAP ax3", Type: "Router", Price: 140},
	{Code: "UP-0001", Name: "APC Back-UPS 1500", Type: "UPS", Price: 260},
}
