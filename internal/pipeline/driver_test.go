package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/ETL/internal/core"
)

// fakeSource serves fixed tables and an order feed. Missing names read as
// empty, like an unavailable object.
type fakeSource struct {
	tables map[string]core.RawTable
	orders []core.OrderRecord
}

func (s fakeSource) ReadTable(_ context.Context, name string) core.RawTable {
	return s.tables[name]
}

func (s fakeSource) ReadEvents(context.Context, string) []core.OrderRecord {
	return s.orders
}

// memSink records written tables and fails for the listed entities.
type memSink struct {
	mu      sync.Mutex
	written map[string]core.Table
	fail    map[string]error
}

func newMemSink() *memSink {
	return &memSink{written: map[string]core.Table{}, fail: map[string]error{}}
}

func (s *memSink) WriteTable(_ context.Context, t core.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail[t.Name]; err != nil {
		return err
	}
	s.written[t.Name] = t
	return nil
}

// countingRecorder counts recorder callbacks.
type countingRecorder struct {
	mu       sync.Mutex
	runs     int
	statuses []string
	rows     map[string]int
	failures map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{rows: map[string]int{}, failures: map[string]int{}}
}

func (r *countingRecorder) RunFinished(status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs++
	r.statuses = append(r.statuses, status)
}

func (r *countingRecorder) TableWritten(entity string, rows int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[entity] += rows
}

func (r *countingRecorder) EntityFailed(entity string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[entity]++
}

func (r *countingRecorder) runCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runs
}

func table(cols []string, rows ...[]string) core.RawTable {
	t := core.RawTable{Columns: cols}
	for _, r := range rows {
		row := core.Row{}
		for i, c := range cols {
			if r[i] == "" {
				row[c] = core.Null()
			} else {
				row[c] = core.String(r[i])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func fullSource() fakeSource {
	return fakeSource{
		tables: map[string]core.RawTable{
			"employees.csv": table(
				[]string{"Employee_ID", "First_Name", "Last_Name", "Email", "Phone", "Job_Title", "Salary", "Hire_Date", "Store_ID"},
				[]string{"1", "Ada", "Lovelace", "ada@example.com", "+14165551234", "Manager", "72000", "2021-03-01", "1"},
			),
			"customers.csv": table(
				[]string{"Customer_ID", "First_Name", "Last_Name", "Email", "Phone", "Address", "City"},
				[]string{"7", "Grace", "Hopper", "not-an-email", "12345", "1 Main St", "Toronto"},
			),
			"products.csv": table(
				[]string{"Product_ID", "Name", "Price", "Stock_Quantity"},
				[]string{"10", "Widget", "9.99", "5"},
				[]string{"11", "Gadget", "N/A", "2"},
			),
			"stores.csv": table(
				[]string{"Store_ID", "Store_Name", "City", "State", "Country"},
				[]string{"1", "Downtown", "Toronto", "ON", "Canada"},
			),
		},
		orders: core.DecodeOrders([]byte(`[
			{"Order_ID": 1, "Customer_ID": 7, "Store_ID": 1, "Order_Date": "2023-05-01", "Total_Amount": 19.98,
			 "Items": [{"Product_ID": 10, "Quantity": 1, "Unit_Price": 9.99}, {"Product_ID": 11, "Quantity": 1, "Unit_Price": 9.99}]}
		]`)),
	}
}

func TestDriver_Run(t *testing.T) {
	sink := newMemSink()
	rec := newCountingRecorder()
	d := NewDriver(fullSource(), sink, WithRecorder(rec))

	res, err := d.Run(context.Background(), Trigger{Source: "test"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.Status != StatusSuccess {
		t.Errorf("Status = %q, want %q", res.Status, StatusSuccess)
	}
	if res.RunID == "" {
		t.Error("RunID is empty")
	}

	want := []string{"employees", "customers", "products", "stores", "orders", "order_items"}
	if len(res.Tables) != len(want) {
		t.Fatalf("Tables = %v, want %v", res.Tables, want)
	}
	for i := range want {
		if res.Tables[i] != want[i] {
			t.Errorf("Tables[%d] = %q, want %q", i, res.Tables[i], want[i])
		}
	}

	if got := res.Entities["order_items"].Rows; got != 2 {
		t.Errorf("order_items rows = %d, want 2", got)
	}
	items := sink.written["order_items"]
	for i := range items.Records {
		if got := items.Cell(i, core.ColOrderID); got != int64(1) {
			t.Errorf("order_items[%d].Order_ID = %v, want 1", i, got)
		}
	}

	customers := sink.written["customers"]
	if got := customers.Cell(0, "Email"); got != core.Unknown {
		t.Errorf("customer Email = %v, want %q", got, core.Unknown)
	}
	if got := customers.Cell(0, "Phone"); got != core.Unknown {
		t.Errorf("customer Phone = %v, want %q", got, core.Unknown)
	}

	products := sink.written["products"]
	if got := products.Cell(1, "Price"); got != 0.0 {
		t.Errorf("product Price = %v, want 0", got)
	}

	if rec.runCount() != 1 || rec.rows["orders"] != 1 {
		t.Errorf("recorder runs = %d, orders rows = %d, want 1 and 1", rec.runs, rec.rows["orders"])
	}
}

func TestDriver_Run_StoresUnavailable(t *testing.T) {
	src := fullSource()
	delete(src.tables, "stores.csv")
	sink := newMemSink()

	res, err := NewDriver(src, sink).Run(context.Background(), Trigger{Source: "test"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, name := range res.Tables {
		if name == "stores" {
			t.Errorf("Tables = %v, want stores omitted", res.Tables)
		}
	}
	if len(res.Tables) != 5 {
		t.Errorf("len(Tables) = %d, want 5", len(res.Tables))
	}

	st, ok := res.Entities["stores"]
	if !ok {
		t.Fatal("Entities missing stores")
	}
	if st.Rows != 0 || st.Written {
		t.Errorf("stores status = %+v, want rows=0 written=false", st)
	}
	if _, ok := sink.written["stores"]; ok {
		t.Error("stores was written")
	}
	if _, ok := sink.written["employees"]; !ok {
		t.Error("employees was not written")
	}
}

func TestDriver_Run_SinkFailureIsolated(t *testing.T) {
	sink := newMemSink()
	sink.fail["products"] = errors.New("AccessDenied: access denied")
	rec := newCountingRecorder()

	res, err := NewDriver(fullSource(), sink, WithRecorder(rec)).Run(context.Background(), Trigger{Source: "test"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	st := res.Entities["products"]
	if st.Written || st.Error == "" {
		t.Errorf("products status = %+v, want failed", st)
	}
	if st.Code != "STO003" {
		t.Errorf("products Code = %q, want %q", st.Code, "STO003")
	}
	if len(res.Tables) != 5 {
		t.Errorf("Tables = %v, want 5 entries", res.Tables)
	}
	if _, ok := sink.written["stores"]; !ok {
		t.Error("stores after the failed entity was not written")
	}
	if rec.failures["products"] != 1 {
		t.Errorf("failures[products] = %d, want 1", rec.failures["products"])
	}
}

func TestDriver_Run_EmptyBatch(t *testing.T) {
	sink := newMemSink()
	res, err := NewDriver(fakeSource{}, sink).Run(context.Background(), Trigger{Source: "test"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(res.Tables) != 0 {
		t.Errorf("Tables = %v, want none", res.Tables)
	}
	if len(res.Entities) != core.EntityCount() {
		t.Errorf("len(Entities) = %d, want %d", len(res.Entities), core.EntityCount())
	}
	if len(sink.written) != 0 {
		t.Errorf("written = %d tables, want 0", len(sink.written))
	}
}

func TestDriver_Run_UsesTriggerRunID(t *testing.T) {
	res, _ := NewDriver(fakeSource{}, newMemSink()).Run(context.Background(), Trigger{RunID: "run-42"})
	if res.RunID != "run-42" {
		t.Errorf("RunID = %q, want %q", res.RunID, "run-42")
	}
}

func TestDriver_Run_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewDriver(fullSource(), newMemSink()).Run(ctx, Trigger{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want %v", err, context.Canceled)
	}
	if res.Status != StatusCanceled {
		t.Errorf("Status = %q, want %q", res.Status, StatusCanceled)
	}
}

func TestTransform_Order(t *testing.T) {
	tables := Transform(Batch{})
	keys := core.Keys()
	if len(tables) != len(keys) {
		t.Fatalf("len(Transform()) = %d, want %d", len(tables), len(keys))
	}
	for i, tbl := range tables {
		if tbl.Name != keys[i] {
			t.Errorf("tables[%d] = %q, want %q", i, tbl.Name, keys[i])
		}
		if !tbl.Empty() {
			t.Errorf("%s Len() = %d, want 0", tbl.Name, tbl.Len())
		}
	}
}

func TestTransform_CleansTabularOnce(t *testing.T) {
	dup := []string{"1", "Downtown", "Toronto", "ON", "Canada"}
	b := Batch{Tables: map[string]core.RawTable{
		"stores": table([]string{"Store_ID", "Store_Name", "City", "State", "Country"}, dup, dup,
			[]string{"2", "", "Ottawa", "ON", "Canada"}),
	}}

	var stores core.Table
	for _, tbl := range Transform(b) {
		if tbl.Name == "stores" {
			stores = tbl
		}
	}
	if stores.Len() != 2 {
		t.Fatalf("stores Len() = %d, want 2", stores.Len())
	}
	if got := stores.Cell(1, "Store_Name"); got != core.Unknown {
		t.Errorf("Store_Name = %v, want %q", got, core.Unknown)
	}
}

func TestExtract_ReadsEachSource(t *testing.T) {
	b := Extract(context.Background(), fullSource())
	if got := b.Tables["stores"].Len(); got != 1 {
		t.Errorf("stores Len() = %d, want 1", got)
	}
	if len(b.Orders) != 1 {
		t.Errorf("len(Orders) = %d, want 1", len(b.Orders))
	}
}
