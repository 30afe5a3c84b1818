package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"stagecrew/internal/domain"
)

func TestReservationRepository_CreateRoomReservation(t *testing.T) {
	ctx := context.Background()
	day := fixedTime.Truncate(24 * time.Hour)

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "reserves a free room",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT id FROM rooms WHERE id = \$1 FOR UPDATE`).
					WithArgs("room-1").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("room-1"))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM room_reservations`).
					WithArgs("room-1", day).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
				mock.ExpectQuery(`INSERT INTO room_reservations`).
					WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("rr-1", fixedTime))
				mock.ExpectCommit()
			},
		},
		{
			name: "room already taken that day",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT id FROM rooms WHERE id = \$1 FOR UPDATE`).
					WithArgs("room-1").
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("room-1"))
				mock.ExpectQuery(`SELECT COUNT\(\*\) FROM room_reservations`).
					WithArgs("room-1", day).
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
				mock.ExpectRollback()
			},
			wantErr: domain.ErrRoomUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewReservationRepository(db)
			res := &domain.RoomReservation{EventInstanceID: "ev-1", RoomID: "room-1", Day: day}
			err = repo.CreateRoomReservation(ctx, res)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				require.Equal(t, "rr-1", res.ID)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestReservationRepository_CreateResourceReservation(t *testing.T) {
	ctx := context.Background()
	day := fixedTime.Truncate(24 * time.Hour)

	tests := []struct {
		name     string
		quantity int
		reserved int
		wantErr  error
	}{
		{name: "fits within quantity", quantity: 3, reserved: 5},
		{name: "exactly exhausts quantity", quantity: 5, reserved: 5},
		{name: "oversubscribed", quantity: 6, reserved: 5, wantErr: domain.ErrResourceOversubscribed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			mock.ExpectBegin()
			mock.ExpectQuery(`SELECT total_quantity FROM resources WHERE id = \$1 FOR UPDATE`).
				WithArgs("res-1").
				WillReturnRows(sqlmock.NewRows([]string{"total_quantity"}).AddRow(10))
			mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity\), 0\) FROM resource_reservations`).
				WithArgs("res-1", day).
				WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(tt.reserved))
			if tt.wantErr == nil {
				mock.ExpectQuery(`INSERT INTO resource_reservations`).
					WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("rsv-1", fixedTime))
				mock.ExpectCommit()
			} else {
				mock.ExpectRollback()
			}

			repo := NewReservationRepository(db)
			res := &domain.ResourceReservation{EventInstanceID: "ev-1", ResourceID: "res-1", Day: day, Quantity: tt.quantity}
			err = repo.CreateResourceReservation(ctx, res)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
