package topology

import "smart-building-os/internal/models"

func strPtr(s string) *string { return &s }

// demoTopology トポロジ取得失敗時のデモ用データ
// 部屋2つ + 環境センサー + 照明の最小構成。
func demoTopology() []models.TopologyItem {
	return []models.TopologyItem{
		{
			PointID:         "1",
			EntityID:        "room_101",
			EntityName:      "Demo Room 101",
			ComponentTypeID: "Space",
			ParentID:        strPtr("building_1"),
		},
		{
			PointID:         "2",
			EntityID:        "room_102",
			EntityName:      "Demo Room 102",
			ComponentTypeID: "Space",
			ParentID:        strPtr("building_1"),
		},
		{
			PointID:         "3",
			EntityID:        "sensor_001",
			EntityName:      "Temperature Sensor",
			ComponentTypeID: "dtmi_sbco_equipment_EnvironmentalSensor_TEMP_ONLY_01_1",
			ParentID:        strPtr("1"),
		},
		{
			PointID:         "4",
			EntityID:        "light_001",
			EntityName:      "LED Light",
			ComponentTypeID: "dtmi_sbco_equipment_LightingFixture_LED_PNL_40W_1",
			ParentID:        strPtr("1"),
		},
	}
}
