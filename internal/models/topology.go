package models

// TopologyItem 建物トポロジの1エンティティ（digital-twin/search のレスポンス項目）
// Spatial entity (Space) or equipment leaf. PointID is the stable key used
// for subscriptions and cache lookups; EntityID is the upstream modeling id.
type TopologyItem struct {
	PointID         string         `json:"point_id"`
	EntityID        string         `json:"entity_id"`
	EntityName      string         `json:"entity_name"`
	ComponentTypeID string         `json:"component_type_id"`
	ParentID        *string        `json:"parent_id,omitempty"`
	Properties      map[string]any `json:"properties,omitempty"`
	Level           any            `json:"level,omitempty"`
}

// Component kinds, classified by substring match on ComponentTypeID.
const (
	KindSpace          = "space"
	KindSensor         = "sensor"
	KindLighting       = "lighting"
	KindAirConditioner = "hvac"
	KindUnknown        = "unknown"
)

// TopologyResponse digital-twin/search のレスポンス
type TopologyResponse struct {
	Items []TopologyItem `json:"items"`
}

// TopologyQuery digital-twin/search のリクエストボディ
type TopologyQuery struct {
	QueryType string `json:"query_type"`
	Depth     string `json:"depth"`
}
