package services

import (
	"context"
	"testing"
	"time"

	"rwportal-http-service/internal/domain/models"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewJWTService(testConfig(), db)

	mustCreate(t, db, &models.User{Username: "bendahara", Password: "rahasia123", Name: "Siti", Role: models.RoleBendaharaRW, Status: "active"})
	mustCreate(t, db, &models.User{Username: "rt01", Password: "rahasia123", Role: models.RoleKetuaRT, RTID: uintPtr(1), Status: "active"})
	mustCreate(t, db, &models.User{Username: "nonaktif", Password: "rahasia123", Role: models.RoleWarga, Status: "disabled"})

	t.Run("login returns usable token", func(t *testing.T) {
		result, err := svc.Login(ctx, "bendahara", "rahasia123")
		require.NoError(t, err)
		assert.Equal(t, models.RoleBendaharaRW, result.Role)
		assert.Equal(t, "Siti", result.Name)
		assert.WithinDuration(t, time.Now().Add(time.Hour), result.ExpiresAt, time.Minute)

		caller, err := svc.ParseCaller(result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.UserID, caller.UserID)
		assert.True(t, caller.IsBoardAdmin())
		assert.Nil(t, caller.RTID)
	})

	t.Run("rt id is carried in the token", func(t *testing.T) {
		result, err := svc.Login(ctx, "rt01", "rahasia123")
		require.NoError(t, err)
		caller, err := svc.ParseCaller(result.Token)
		require.NoError(t, err)
		require.NotNil(t, caller.RTID)
		assert.EqualValues(t, 1, *caller.RTID)
		assert.False(t, caller.IsBoardAdmin())
	})

	t.Run("bad credentials", func(t *testing.T) {
		_, err := svc.Login(ctx, "bendahara", "salah")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = svc.Login(ctx, "tidakada", "rahasia123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = svc.Login(ctx, "nonaktif", "rahasia123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		cfg := testConfig()
		cfg.JWTSecretKey = "other"
		token, err := NewJWTService(cfg, db).GenerateToken(1, models.RoleKetuaRW, nil)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		claims := &JWTClaims{
			UserID: 1,
			Role:   models.RoleKetuaRW,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = svc.ParseCaller(token)
		assert.Error(t, err)
	})

	t.Run("unknown role is rejected", func(t *testing.T) {
		token, err := svc.GenerateToken(1, models.Role("superuser"), nil)
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("none algorithm is rejected", func(t *testing.T) {
		claims := &JWTClaims{UserID: 1, Role: models.RoleKetuaRW}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.Error(t, err)
	})
}

func TestUserService(t *testing.T) {
	ctx := context.Background()

	t.Run("default admin is created once", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewUserService(db, testConfig())

		created, password, err := svc.EnsureDefaultAdmin(ctx)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Len(t, password, 16)

		admin, err := svc.GetUserByUsername(ctx, DefaultAdminUsername)
		require.NoError(t, err)
		assert.Equal(t, models.RoleKetuaRW, admin.Role)
		assert.NotEqual(t, password, admin.Password)
		assert.True(t, admin.CheckPassword(password))

		created, _, err = svc.EnsureDefaultAdmin(ctx)
		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("configured admin password", func(t *testing.T) {
		db := newTestDB(t)
		cfg := testConfig()
		cfg.DefaultAdminPassword = "ketua-rw-2024"
		svc := NewUserService(db, cfg)

		_, password, err := svc.EnsureDefaultAdmin(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ketua-rw-2024", password)

		result, err := NewJWTService(cfg, db).Login(ctx, DefaultAdminUsername, "ketua-rw-2024")
		require.NoError(t, err)
		assert.Equal(t, models.RoleKetuaRW, result.Role)
	})

	t.Run("create user", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewUserService(db, testConfig())

		user := &models.User{Username: " warga01 ", Password: "pw123456", Name: "Dewi"}
		require.NoError(t, svc.CreateUser(ctx, rwAdmin(), user))
		assert.Equal(t, "warga01", user.Username)
		assert.Equal(t, models.RoleWarga, user.Role)

		err := svc.CreateUser(ctx, rwAdmin(), &models.User{Username: "warga01", Password: "x"})
		assert.ErrorIs(t, err, ErrUserAlreadyExist)

		err = svc.CreateUser(ctx, rwAdmin(), &models.User{Username: "x", Password: "x", Role: "lurah"})
		assert.ErrorIs(t, err, ErrInvalidInput)

		err = svc.CreateUser(ctx, rwAdmin(), &models.User{Username: "x"})
		assert.ErrorIs(t, err, ErrInvalidInput)

		err = svc.CreateUser(ctx, rtChair(1), &models.User{Username: "y", Password: "y"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("list and delete", func(t *testing.T) {
		db := newTestDB(t)
		svc := NewUserService(db, testConfig())
		for _, name := range []string{"andi", "budi", "cici"} {
			require.NoError(t, svc.CreateUser(ctx, rwAdmin(), &models.User{Username: name, Password: "pw"}))
		}

		users, total, err := svc.GetAllUsers(ctx, 1, 2, "")
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, users, 2)

		users, total, err = svc.GetAllUsers(ctx, 1, 10, "bud")
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, users, 1)

		budi := users[0]
		err = svc.DeleteUser(ctx, &Caller{UserID: budi.ID, Role: models.RoleKetuaRW}, budi.ID)
		assert.ErrorIs(t, err, ErrInvalidInput)

		require.NoError(t, svc.DeleteUser(ctx, rwAdmin(), budi.ID))
		_, err = svc.GetUserByID(ctx, budi.ID)
		assert.ErrorIs(t, err, ErrUserNotFound)

		err = svc.DeleteUser(ctx, rwAdmin(), 999)
		assert.ErrorIs(t, err, ErrUserNotFound)
		err = svc.DeleteUser(ctx, resident(), 1)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}
