package topology

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"smart-building-os/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, items []models.TopologyItem) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/digital-twin/search", r.URL.Path)

		var query models.TopologyQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&query))
		assert.Equal(t, "topology", query.QueryType)
		assert.Equal(t, "Equipment", query.Depth)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.TopologyResponse{Items: items})
	}))
}

func testItems() []models.TopologyItem {
	return []models.TopologyItem{
		{PointID: "r1", EntityID: "room_201", EntityName: "会議室201", ComponentTypeID: "Space", ParentID: strPtr("b1")},
		{PointID: "r2", EntityID: "room_202", EntityName: "事務室202", ComponentTypeID: "Space", ParentID: strPtr("b1")},
		{PointID: "s1", EntityID: "sensor_201_01", EntityName: "Env Sensor 201", ComponentTypeID: "dtmi_sbco_equipment_EnvironmentalSensor_ENV_MULTI_01_1", ParentID: strPtr("r1")},
		{PointID: "l1", EntityID: "light_201_01", EntityName: "LED Panel 201", ComponentTypeID: "dtmi_sbco_equipment_LightingFixture_LED_PNL_40W_1", ParentID: strPtr("r1")},
		{PointID: "a1", EntityID: "hvac_202_01", EntityName: "AC 202", ComponentTypeID: "dtmi_sbco_equipment_AirConditioner_PAC_28GV_1", ParentID: strPtr("r2")},
	}
}

func TestStore_Load_Success(t *testing.T) {
	server := newTestServer(t, testItems())
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, "Equipment", zap.NewNop())
	store := NewStore(client, zap.NewNop())

	store.Load(context.Background())

	assert.False(t, store.Fallback())
	assert.Len(t, store.Items(), 5)
	assert.Len(t, store.Rooms(), 2)
	assert.Len(t, store.EquipmentIn("r1"), 2)
	assert.Len(t, store.EquipmentIn("r2"), 1)
}

func TestStore_Load_FallbackOnFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, "Equipment", zap.NewNop())
	store := NewStore(client, zap.NewNop())

	store.Load(context.Background())

	// デモ用データで非空になる
	assert.True(t, store.Fallback())
	items := store.Items()
	assert.NotEmpty(t, items)

	rooms := store.Rooms()
	require.NotEmpty(t, rooms)

	equipment := store.EquipmentIn(rooms[0].PointID)
	require.NotEmpty(t, equipment)
	require.NotNil(t, equipment[0].ParentID)
	assert.Equal(t, rooms[0].PointID, *equipment[0].ParentID)
}

func TestStore_Load_FallbackOnUnreachableServer(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 500*time.Millisecond, "Equipment", zap.NewNop())
	store := NewStore(client, zap.NewNop())

	store.Load(context.Background())

	assert.True(t, store.Fallback())
	assert.NotEmpty(t, store.Items())
}

func TestStore_Load_ReplacesWholesale(t *testing.T) {
	server := newTestServer(t, testItems())
	client := NewClient(server.URL, 5*time.Second, "Equipment", zap.NewNop())
	store := NewStore(client, zap.NewNop())

	store.Load(context.Background())
	require.Len(t, store.Items(), 5)
	server.Close()

	// 再取得に失敗したらデモ用データに全件置き換え
	store.Load(context.Background())
	assert.True(t, store.Fallback())
	assert.Len(t, store.Items(), 4)
}

func TestStore_Roots_UnknownParentIsTopLevel(t *testing.T) {
	store := NewStore(nil, zap.NewNop())
	store.replace(testItems(), false)

	// b1 は未ロードなので部屋はトップレベル扱い
	roots := store.Roots()
	assert.Len(t, roots, 2)
	for _, root := range roots {
		assert.Equal(t, "Space", root.ComponentTypeID)
	}
}

func TestStore_ChildrenOf(t *testing.T) {
	store := NewStore(nil, zap.NewNop())
	store.replace(testItems(), false)

	children := store.ChildrenOf("r1")
	assert.Len(t, children, 2)
	assert.Empty(t, store.ChildrenOf("missing"))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, models.KindSpace, KindOf("Space"))
	assert.Equal(t, models.KindSensor, KindOf("dtmi_sbco_equipment_EnvironmentalSensor_TEMP_ONLY_01_1"))
	assert.Equal(t, models.KindLighting, KindOf("dtmi_sbco_equipment_LightingFixture_LED_PNL_40W_1"))
	assert.Equal(t, models.KindAirConditioner, KindOf("dtmi_sbco_equipment_AirConditioner_PAC_28GV_1"))
	assert.Equal(t, models.KindUnknown, KindOf("dtmi_sbco_equipment_SecurityCamera_01"))
}
