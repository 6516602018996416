package services

import (
	"context"
	"testing"

	"rwportal-http-service/internal/domain/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func TestHouseholdService(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewHouseholdService(db, testConfig())

	rt1 := &models.RT{Number: "001"}
	rt2 := &models.RT{Number: "002"}
	require.NoError(t, svc.CreateRT(ctx, rwAdmin(), rt1))
	require.NoError(t, svc.CreateRT(ctx, rwAdmin(), rt2))

	t.Run("rt rules", func(t *testing.T) {
		err := svc.CreateRT(ctx, rwAdmin(), &models.RT{Number: "001"})
		assert.ErrorIs(t, err, ErrInvalidInput)
		err = svc.CreateRT(ctx, rwAdmin(), &models.RT{Number: " "})
		assert.ErrorIs(t, err, ErrInvalidInput)
		err = svc.CreateRT(ctx, rtChair(rt1.ID), &models.RT{Number: "003"})
		assert.ErrorIs(t, err, ErrForbidden)

		rts, err := svc.GetAllRTs(ctx)
		require.NoError(t, err)
		require.Len(t, rts, 2)
		assert.Equal(t, "001", rts[0].Number)
	})

	h, err := svc.CreateHousehold(ctx, rwAdmin(), HouseholdInput{RTID: rt1.ID, Street: " Jl. Kenanga ", HouseNumber: "7", Zone: "Timur"})
	require.NoError(t, err)

	t.Run("create defaults to occupied", func(t *testing.T) {
		assert.Equal(t, "Jl. Kenanga", h.Street)
		assert.True(t, h.Occupied)
	})

	t.Run("address is unique within rt", func(t *testing.T) {
		_, err := svc.CreateHousehold(ctx, rwAdmin(), HouseholdInput{RTID: rt1.ID, Street: "Jl. Kenanga", HouseNumber: "7"})
		assert.ErrorIs(t, err, ErrHouseholdAlreadyExist)

		other, err := svc.CreateHousehold(ctx, rwAdmin(), HouseholdInput{RTID: rt2.ID, Street: "Jl. Kenanga", HouseNumber: "7", Occupied: boolPtr(false)})
		require.NoError(t, err)
		assert.False(t, other.Occupied)
	})

	t.Run("validation", func(t *testing.T) {
		_, err := svc.CreateHousehold(ctx, rwAdmin(), HouseholdInput{RTID: rt1.ID, Street: "Jl. Kenanga"})
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = svc.CreateHousehold(ctx, rwAdmin(), HouseholdInput{RTID: 99, Street: "Jl. Kenanga", HouseNumber: "8"})
		assert.ErrorIs(t, err, ErrRTNotFound)
	})

	t.Run("rt board limited to own rt", func(t *testing.T) {
		_, err := svc.CreateHousehold(ctx, rtChair(rt1.ID), HouseholdInput{RTID: rt1.ID, Street: "Jl. Kenanga", HouseNumber: "9"})
		require.NoError(t, err)
		_, err = svc.CreateHousehold(ctx, rtChair(rt1.ID), HouseholdInput{RTID: rt2.ID, Street: "Jl. Kenanga", HouseNumber: "9"})
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = svc.CreateHousehold(ctx, resident(), HouseholdInput{RTID: rt1.ID, Street: "Jl. Kenanga", HouseNumber: "10"})
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = svc.CreateHousehold(ctx, nil, HouseholdInput{RTID: rt1.ID, Street: "Jl. Kenanga", HouseNumber: "10"})
		assert.ErrorIs(t, err, ErrUnauthenticated)
		// 不能把户号移到其他RT
		_, err = svc.UpdateHousehold(ctx, rtChair(rt1.ID), h.ID, HouseholdInput{RTID: rt2.ID, Street: "Jl. Kenanga", HouseNumber: "7"})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("update keeps occupancy unless given", func(t *testing.T) {
		updated, err := svc.UpdateHousehold(ctx, rwAdmin(), h.ID, HouseholdInput{RTID: rt1.ID, Street: "Jl. Kenanga", HouseNumber: "7", Zone: "Blok A", Occupied: boolPtr(false)})
		require.NoError(t, err)
		assert.Equal(t, "Blok A", updated.Zone)
		assert.False(t, updated.Occupied)
		require.NotNil(t, updated.RT)
		assert.Equal(t, "001", updated.RT.Number)

		updated, err = svc.UpdateHousehold(ctx, rwAdmin(), h.ID, HouseholdInput{RTID: rt1.ID, Street: "Jl. Kenanga", HouseNumber: "7A"})
		require.NoError(t, err)
		assert.Equal(t, "7A", updated.HouseNumber)
		assert.False(t, updated.Occupied)

		_, err = svc.UpdateHousehold(ctx, rwAdmin(), 999, HouseholdInput{RTID: rt1.ID, Street: "x", HouseNumber: "1"})
		assert.ErrorIs(t, err, ErrHouseholdNotFound)
	})

	t.Run("list with filters", func(t *testing.T) {
		all, total, err := svc.GetAllHouseholds(ctx, HouseholdQuery{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, all, 3)

		inRT1, total, err := svc.GetAllHouseholds(ctx, HouseholdQuery{RTID: rt1.ID, Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, inRT1, 2)

		vacant, total, err := svc.GetAllHouseholds(ctx, HouseholdQuery{Occupied: boolPtr(false), Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, vacant, 2)

		page, total, err := svc.GetAllHouseholds(ctx, HouseholdQuery{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
		assert.Len(t, page, 1)
	})

	t.Run("delete refuses households in use", func(t *testing.T) {
		spare, err := svc.CreateHousehold(ctx, rwAdmin(), HouseholdInput{RTID: rt2.ID, Street: "Jl. Anggrek", HouseNumber: "1"})
		require.NoError(t, err)
		mustCreate(t, db, &models.Bill{
			HouseholdID: spare.ID,
			Period:      day(2024, 3, 1),
			Amount:      decimal.NewFromInt(100000),
			Status:      models.BillStatusUnpaid,
			AmountPaid:  decimal.Zero,
		})
		assert.ErrorIs(t, svc.DeleteHousehold(ctx, rwAdmin(), spare.ID), ErrHouseholdInUse)

		empty, err := svc.CreateHousehold(ctx, rwAdmin(), HouseholdInput{RTID: rt2.ID, Street: "Jl. Anggrek", HouseNumber: "2"})
		require.NoError(t, err)
		assert.ErrorIs(t, svc.DeleteHousehold(ctx, rtChair(rt1.ID), empty.ID), ErrForbidden)
		require.NoError(t, svc.DeleteHousehold(ctx, rwAdmin(), empty.ID))
		_, err = svc.GetHouseholdByID(ctx, empty.ID)
		assert.ErrorIs(t, err, ErrHouseholdNotFound)
	})
}

func TestResidentService(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	f := seedBillingFixture(t, db)
	households := NewHouseholdService(db, testConfig())
	svc := NewResidentService(db, testConfig(), households)
	h1 := f.households[0].ID

	t.Run("list puts head first", func(t *testing.T) {
		residents, err := svc.GetResidentsByHousehold(ctx, h1)
		require.NoError(t, err)
		require.Len(t, residents, 2)
		assert.Equal(t, "Budi", residents[0].Name)
		assert.True(t, residents[0].IsHead)

		_, err = svc.GetResidentsByHousehold(ctx, 999)
		assert.ErrorIs(t, err, ErrHouseholdNotFound)
	})

	t.Run("new head replaces previous head", func(t *testing.T) {
		created, err := svc.CreateResident(ctx, rtChair(f.rt.ID), h1, ResidentInput{Name: " Joko ", IsHead: true})
		require.NoError(t, err)
		assert.Equal(t, "Joko", created.Name)

		var heads []models.Resident
		require.NoError(t, db.Where("household_id = ? AND is_head = ?", h1, true).Find(&heads).Error)
		require.Len(t, heads, 1)
		assert.Equal(t, created.ID, heads[0].ID)

		// 账单列表显示新户主
		bills := NewGormDuesStore(db)
		require.NoError(t, db.Create(&models.Bill{HouseholdID: h1, Period: day(2024, 5, 1), Amount: decimal.NewFromInt(1), Status: models.BillStatusUnpaid, AmountPaid: decimal.Zero}).Error)
		views, err := bills.ListBills(ctx, BillQuery{HouseholdID: h1})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, "Joko", views[0].HeadName)
	})

	t.Run("validation and access", func(t *testing.T) {
		_, err := svc.CreateResident(ctx, rwAdmin(), h1, ResidentInput{Name: "  "})
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = svc.CreateResident(ctx, rtChair(f.rt.ID+1), h1, ResidentInput{Name: "Eko"})
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = svc.CreateResident(ctx, rwAdmin(), 999, ResidentInput{Name: "Eko"})
		assert.ErrorIs(t, err, ErrHouseholdNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		r, err := svc.CreateResident(ctx, rwAdmin(), f.households[2].ID, ResidentInput{Name: "Eko"})
		require.NoError(t, err)
		assert.ErrorIs(t, svc.DeleteResident(ctx, resident(), r.ID), ErrForbidden)
		require.NoError(t, svc.DeleteResident(ctx, rwAdmin(), r.ID))
		_, err = svc.GetResidentByID(ctx, r.ID)
		assert.ErrorIs(t, err, ErrResidentNotFound)
		assert.ErrorIs(t, svc.DeleteResident(ctx, rwAdmin(), r.ID), ErrResidentNotFound)
	})
}
