package database

import (
	"errors"
	"fmt"
	"net"

	apperrors "katagaki/pkg/app_errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
	CheckViolation      = "23514"
	InvalidTextRepr     = "22P02"
)

// MapConnError 把無法連線的錯誤轉成 ErrConnectivity，其他錯誤原樣回傳
func MapConnError(err error) error {
	if err == nil {
		return nil
	}
	var connErr *pgconn.ConnectError
	var netErr net.Error
	if errors.As(err, &connErr) || errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", apperrors.ErrConnectivity, err)
	}
	return err
}

// IsPgError 檢查是否為指定 SQLSTATE 的錯誤
func IsPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// ConstraintName 回傳違反的 constraint 名稱
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
