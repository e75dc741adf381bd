package routes

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"desk-console/internal/models"
	"desk-console/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func seedDevice(t *testing.T, id string, status int, note string) {
	device := &models.Device{
		ID:        id,
		CreatedAt: time.Now().UnixMilli(),
		Status:    intPtr(status),
		Note:      note,
	}
	require.NoError(t, models.DB.Create(device).Error)
}

func TestDeviceRoutes(t *testing.T) {
	cfg := setupTestDB(t)
	router := setupTestRouter(cfg)
	authService := services.NewAuthService(cfg)

	admin := createTestUser(t, authService, "root", "Secret123", models.RoleAdmin)
	operator := createTestUser(t, authService, "ops", "Secret123", models.RoleOperator)
	viewer := createTestUser(t, authService, "watch", "Secret123", models.RoleViewer)

	adminToken := createTestToken(t, authService, admin)
	operatorToken := createTestToken(t, authService, operator)
	viewerToken := createTestToken(t, authService, viewer)

	seedDevice(t, "100200300", 1, "front desk")
	seedDevice(t, "400500600", 0, "")

	t.Run("GET /api/devices - any authenticated role", func(t *testing.T) {
		for _, token := range []string{adminToken, operatorToken, viewerToken} {
			w := doJSON(router, "GET", "/api/devices", token, nil)
			assert.Equal(t, http.StatusOK, w.Code)
		}

		w := doJSON(router, "GET", "/api/devices", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("GET /api/devices - online flag follows status", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/devices", viewerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Devices []models.Device `json:"devices"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Devices, 2)

		online := map[string]bool{}
		for _, d := range response.Devices {
			online[d.ID] = d.IsOnline
		}
		assert.True(t, online["100200300"])
		assert.False(t, online["400500600"])
	})

	t.Run("PUT /api/device/:id - viewer forbidden", func(t *testing.T) {
		w := doJSON(router, "PUT", "/api/device/100200300", viewerToken,
			map[string]string{"note": "nope"})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("PUT /api/device/:id - operator updates note", func(t *testing.T) {
		w := doJSON(router, "PUT", "/api/device/100200300", operatorToken,
			map[string]string{"note": "relocated"})
		assert.Equal(t, http.StatusOK, w.Code)

		var device models.Device
		require.NoError(t, models.DB.Where("id = ?", "100200300").First(&device).Error)
		assert.Equal(t, "relocated", device.Note)
		assert.EqualValues(t, 1, auditCount(t, "update_device"))
	})

	t.Run("PUT /api/device/:id - new id conflict", func(t *testing.T) {
		w := doJSON(router, "PUT", "/api/device/100200300", operatorToken,
			map[string]string{"new_id": "400500600"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("PUT /api/device/:id - rename device id", func(t *testing.T) {
		seedDevice(t, "111111111", 0, "")

		w := doJSON(router, "PUT", "/api/device/111111111", operatorToken,
			map[string]string{"new_id": "222222222"})
		assert.Equal(t, http.StatusOK, w.Code)

		var count int64
		models.DB.Model(&models.Device{}).Where("id = ?", "222222222").Count(&count)
		assert.EqualValues(t, 1, count)
	})

	t.Run("PUT /api/device/:id - new id conflicts with soft-deleted device", func(t *testing.T) {
		seedDevice(t, "444444444", 0, "")
		seedDevice(t, "555555555", 0, "")

		w := doJSON(router, "DELETE", "/api/device/555555555", adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		// the freed-looking id is still held by the soft-deleted row
		w = doJSON(router, "PUT", "/api/device/444444444", operatorToken,
			map[string]string{"new_id": "555555555"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("PUT /api/device/:id - no fields", func(t *testing.T) {
		w := doJSON(router, "PUT", "/api/device/100200300", operatorToken, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("PUT /api/device/:id - not found", func(t *testing.T) {
		w := doJSON(router, "PUT", "/api/device/999999999", operatorToken,
			map[string]string{"note": "ghost"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("POST /api/device/:id/ban - lifecycle", func(t *testing.T) {
		w := doJSON(router, "POST", "/api/device/100200300/ban", operatorToken,
			map[string]string{"reason": "abuse"})
		assert.Equal(t, http.StatusOK, w.Code)

		var device models.Device
		require.NoError(t, models.DB.Where("id = ?", "100200300").First(&device).Error)
		assert.True(t, device.IsBanned)
		assert.Equal(t, "ops", device.BannedBy)
		assert.Equal(t, "abuse", device.BanReason)

		// double ban is a conflict
		w = doJSON(router, "POST", "/api/device/100200300/ban", operatorToken,
			map[string]string{"reason": "again"})
		assert.Equal(t, http.StatusConflict, w.Code)

		// unban clears the metadata
		w = doJSON(router, "POST", "/api/device/100200300/unban", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		require.NoError(t, models.DB.Where("id = ?", "100200300").First(&device).Error)
		assert.False(t, device.IsBanned)
		assert.Empty(t, device.BannedBy)

		// unbanning a device that is not banned is a conflict
		w = doJSON(router, "POST", "/api/device/100200300/unban", adminToken, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("DELETE /api/device/:id - soft delete hides device", func(t *testing.T) {
		seedDevice(t, "333333333", 0, "")

		w := doJSON(router, "DELETE", "/api/device/333333333", adminToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		// gone from the listing
		listW := doJSON(router, "GET", "/api/devices", viewerToken, nil)
		var response struct {
			Devices []models.Device `json:"devices"`
		}
		require.NoError(t, json.Unmarshal(listW.Body.Bytes(), &response))
		for _, d := range response.Devices {
			assert.NotEqual(t, "333333333", d.ID)
		}

		// but the row still exists, soft-deleted
		var device models.Device
		require.NoError(t, models.DB.Where("id = ?", "333333333").First(&device).Error)
		assert.True(t, device.IsDeleted)

		// deleting again reports not found
		w = doJSON(router, "DELETE", "/api/device/333333333", adminToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("GET /api/stats", func(t *testing.T) {
		w := doJSON(router, "GET", "/api/stats", viewerToken, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Stats services.DeviceStats `json:"stats"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, response.Stats.Total, response.Stats.Active+response.Stats.Inactive)
		assert.GreaterOrEqual(t, response.Stats.Total, int64(2))
	})
}
