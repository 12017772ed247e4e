package services

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
)

// Тесты сервисов работают против фейковых репозиториев, поэтому до БД
// доходят только Begin/Commit/Rollback. Драйвер-заглушка поддерживает
// ровно их и считает открытые транзакции; любой настоящий запрос — ошибка.
type stubDriver struct {
	begins *int32
}

func (d stubDriver) Open(string) (driver.Conn, error) {
	return stubConn{begins: d.begins}, nil
}

type stubConn struct {
	begins *int32
}

func (c stubConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("unexpected query on transaction stub")
}

func (c stubConn) Close() error { return nil }

func (c stubConn) Begin() (driver.Tx, error) {
	atomic.AddInt32(c.begins, 1)
	return stubTx{}, nil
}

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

var stubDriverSeq int32

// newStubDB открывает *sql.DB поверх драйвера-заглушки и возвращает
// счётчик открытых транзакций.
func newStubDB(t *testing.T) (*sql.DB, *int32) {
	t.Helper()

	begins := new(int32)
	name := fmt.Sprintf("services-tx-stub-%d", atomic.AddInt32(&stubDriverSeq, 1))
	sql.Register(name, stubDriver{begins: begins})

	db, err := sql.Open(name, "")
	if err != nil {
		t.Fatalf("failed to open stub db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, begins
}
