package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/basket/internal/paths"
)

// env is an isolated config and data directory pair for one test.
type env struct {
	configDir string
	dataDir   string
}

func newEnv(t *testing.T) env {
	t.Helper()
	t.Setenv(paths.EnvConfigDir, "")
	t.Setenv(paths.EnvDataDir, "")
	return env{configDir: t.TempDir(), dataDir: t.TempDir()}
}

// run executes the root command in-process and returns stdout, stderr and
// the exit code.
func (e env) run(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))

	err := root.Execute()
	return stdout.String(), stderr.String(), ExitCode(err)
}

func (e env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	stdout, stderr, code := e.run(t, "", args...)
	require.Equal(t, exitSuccess, code, "basket %v\nstdout: %s\nstderr: %s", args, stdout, stderr)
	return stdout
}

func fixturePath(t *testing.T) string {
	t.Helper()
	p, err := filepath.Abs(filepath.Join("..", "catalog", "testdata", "restaurants.json"))
	require.NoError(t, err)
	return p
}

func TestVersion(t *testing.T) {
	e := newEnv(t)
	assert.Equal(t, "basket "+Version+"\n", e.mustRun(t, "version"))
}

func TestInitWritesConfig(t *testing.T) {
	e := newEnv(t)
	assert.Contains(t, e.mustRun(t, "init"), "basket initialized")

	data, err := os.ReadFile(filepath.Join(e.configDir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "backend: sqlite")
	assert.Contains(t, string(data), "products:\n        layout: array\n        delivery_fee: 0")
	assert.Contains(t, string(data), "food:\n        layout: map\n        delivery_fee: 30")

	_, err = os.Stat(filepath.Join(e.dataDir, "entries.jsonl"))
	assert.NoError(t, err)

	// Idempotent: an existing config is kept.
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte("backend: memory\n"), 0o644))
	e.mustRun(t, "init")
	data, err = os.ReadFile(filepath.Join(e.configDir, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "backend: memory\n", string(data))
}

func TestProductsList(t *testing.T) {
	e := newEnv(t)

	stdout := e.mustRun(t, "products", "list", "--search", "gaming", "--sort", "rating")
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "Mechanical Gaming Keyboard")

	stdout = e.mustRun(t, "--json", "products", "list", "--price", "under-1000,above-2500", "--rating", "4plus")
	var items []struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &items))
	var ids []string
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	assert.Equal(t, []string{"4", "6", "9", "12"}, ids)

	assert.Contains(t, e.mustRun(t, "products", "list", "--search", "toaster"), "No products found.")
}

func TestProductsListBadInput(t *testing.T) {
	e := newEnv(t)

	_, _, code := e.run(t, "", "products", "list", "--sort", "name")
	assert.Equal(t, exitUserError, code)

	_, _, code = e.run(t, "", "products", "list", "--where", "price <")
	assert.Equal(t, exitUserError, code)
}

func TestCartFlow(t *testing.T) {
	e := newEnv(t)

	e.mustRun(t, "cart", "add", "1")
	e.mustRun(t, "cart", "add", "1")
	e.mustRun(t, "cart", "add", "5")
	assert.Equal(t, "3\n", e.mustRun(t, "cart", "count"))

	stdout := e.mustRun(t, "--json", "cart", "show")
	var view cartView
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	assert.Equal(t, 3, view.Count)
	assert.Equal(t, 4547.0, view.Subtotal)
	assert.Equal(t, 0.0, view.DeliveryFee)
	assert.Equal(t, 4547.0, view.Total)

	e.mustRun(t, "cart", "set", "5", "0")
	e.mustRun(t, "cart", "dec", "1")
	assert.Equal(t, "2\n", e.mustRun(t, "cart", "count"))

	e.mustRun(t, "cart", "remove", "5")
	e.mustRun(t, "cart", "remove", "5")
	assert.Equal(t, "1\n", e.mustRun(t, "cart", "count"))

	e.mustRun(t, "cart", "clear")
	assert.Contains(t, e.mustRun(t, "cart", "show"), "Your cart is empty.")
	assert.Contains(t, e.mustRun(t, "cart", "total"), "Total:    0.00")
}

func TestCartTotalPerVariant(t *testing.T) {
	e := newEnv(t)
	src := fixturePath(t)

	// Products carry no delivery fee: the total is the subtotal.
	e.mustRun(t, "cart", "add", "4")
	stdout := e.mustRun(t, "cart", "total")
	assert.Contains(t, stdout, "Subtotal: 899.00")
	assert.Contains(t, stdout, "Delivery: 0.00")
	assert.Contains(t, stdout, "Total:    899.00")

	e.mustRun(t, "cart", "--variant", "food", "--source", src, "add", "r1|m1")
	stdout = e.mustRun(t, "--json", "cart", "--variant", "food", "total")
	var totals map[string]float64
	require.NoError(t, json.Unmarshal([]byte(stdout), &totals))
	assert.Equal(t, map[string]float64{"subtotal": 220, "delivery_fee": 30, "total": 250}, totals)

	stdout = e.mustRun(t, "--json", "checkout")
	var order struct {
		Total float64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &order))
	assert.Equal(t, 899.0, order.Total)
}

func TestCartErrors(t *testing.T) {
	e := newEnv(t)

	_, stderr, code := e.run(t, "", "cart", "add", "999")
	assert.Equal(t, exitUserError, code, stderr)

	e.mustRun(t, "cart", "add", "2")
	_, _, code = e.run(t, "", "cart", "set", "2", "many")
	assert.Equal(t, exitUserError, code)

	_, _, code = e.run(t, "", "cart", "set", "3", "2")
	assert.Equal(t, exitUserError, code)

	_, _, code = e.run(t, "", "cart", "--variant", "books", "show")
	assert.Equal(t, exitUserError, code)
}

func TestFoodCartAndCheckout(t *testing.T) {
	e := newEnv(t)
	src := fixturePath(t)

	e.mustRun(t, "cart", "--variant", "food", "--source", src, "add", "m1")
	e.mustRun(t, "cart", "--variant", "food", "--source", src, "add", "r2|m1")
	e.mustRun(t, "cart", "--variant", "food", "--source", src, "add", "r1|m1")

	stdout := e.mustRun(t, "cart", "--variant", "food", "show")
	assert.Contains(t, stdout, "r1|m1")
	assert.Contains(t, stdout, "Paneer Butter Masala (Spice Route)")
	assert.Contains(t, stdout, "r2|m1")

	// The product cart is separate.
	assert.Equal(t, "0\n", e.mustRun(t, "cart", "count"))

	stdout = e.mustRun(t, "checkout", "--variant", "food")
	assert.Contains(t, stdout, "Order placed! Order ID: ORD-")
	assert.Equal(t, "0\n", e.mustRun(t, "cart", "--variant", "food", "count"))

	assert.Contains(t, e.mustRun(t, "orders", "--variant", "food", "list"), "ORD-")
	assert.Contains(t, e.mustRun(t, "orders", "list"), "No orders yet.")

	_, _, code := e.run(t, "", "checkout", "--variant", "food")
	assert.Equal(t, exitUserError, code)
}

func TestRestaurants(t *testing.T) {
	e := newEnv(t)
	src := fixturePath(t)

	stdout := e.mustRun(t, "restaurants", "--source", src, "list", "--sort", "delivery")
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[1], "Bangkok Bites")
	assert.Contains(t, lines[3], "Spice Route")

	assert.Contains(t, e.mustRun(t, "restaurants", "--source", src, "list", "--cuisine", "Italian"), "Slice House")
	assert.Equal(t, "Indian\nItalian\nNorth Indian\nThai\n", e.mustRun(t, "restaurants", "--source", src, "cuisines"))
	assert.Contains(t, e.mustRun(t, "restaurants", "--source", src, "menu", "r2"), "r2|m3")

	_, _, code := e.run(t, "", "restaurants", "--source", src, "menu", "r9")
	assert.Equal(t, exitUserError, code)
}

func TestRestaurantsLoadFailure(t *testing.T) {
	e := newEnv(t)

	_, _, code := e.run(t, "", "restaurants", "--source", filepath.Join(t.TempDir(), "missing.json"), "list")
	assert.Equal(t, exitSysError, code)

	_, _, code = e.run(t, "", "restaurants", "list")
	assert.Equal(t, exitUserError, code, "no source configured")
}

func TestContact(t *testing.T) {
	e := newEnv(t)

	_, stderr, code := e.run(t, "", "contact", "--name", "A", "--email", "nope", "--message", "hi")
	assert.Equal(t, exitUserError, code)
	assert.Contains(t, stderr, "name: ")
	assert.Contains(t, stderr, "email: ")
	assert.Contains(t, stderr, "message: ")

	stdout := e.mustRun(t, "contact", "--name", "Ada", "--email", "ada@example.com", "--message", "Where is my order?")
	assert.Contains(t, stdout, "message has been sent")
}

func TestQuiz(t *testing.T) {
	e := newEnv(t)

	stdout, _, code := e.run(t, "3\n2\nearth\n9\nOzone Layer\n", "quiz")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "Wrong. The answer is 70%.")
	assert.Contains(t, stdout, "Pick one of the listed options.")
	assert.Contains(t, stdout, "Your Score: 3 / 4")

	stdout, _, code = e.run(t, "1\n", "quiz")
	require.Equal(t, exitSuccess, code)
	assert.Contains(t, stdout, "Quiz stopped. Score: 0 / 4")
}

func TestTheme(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, "light\n", e.mustRun(t, "theme", "show"))
	assert.Equal(t, "dark\n", e.mustRun(t, "theme", "toggle"))
	assert.Equal(t, "dark\n", e.mustRun(t, "theme", "show"))
}

func TestConfigOverrides(t *testing.T) {
	e := newEnv(t)
	cfg := "backend: memory\ncart:\n  products:\n    layout: map\n    delivery_fee: 50\n"
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte(cfg), 0o644))

	stdout := e.mustRun(t, "--json", "cart", "add", "3")
	var view cartView
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	assert.Equal(t, 50.0, view.DeliveryFee)
	assert.Equal(t, 1549.0, view.Total)

	// The memory backend keeps nothing between runs.
	assert.Equal(t, "0\n", e.mustRun(t, "cart", "count"))
}

func TestCartKeyOverridesPerVariant(t *testing.T) {
	e := newEnv(t)
	src := fixturePath(t)
	cfg := "cart:\n  products:\n    key: shop-cart\n  food:\n    key: lunch-cart\n"
	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte(cfg), 0o644))

	e.mustRun(t, "cart", "add", "3")
	e.mustRun(t, "cart", "--variant", "food", "--source", src, "add", "r2|m3")
	e.mustRun(t, "cart", "--variant", "food", "--source", src, "add", "r2|m3")

	assert.Equal(t, "1\n", e.mustRun(t, "cart", "count"))
	assert.Equal(t, "2\n", e.mustRun(t, "cart", "--variant", "food", "count"))

	data, err := os.ReadFile(filepath.Join(e.dataDir, "entries.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"key":"shop-cart"`)
	assert.Contains(t, string(data), `"key":"lunch-cart"`)
	assert.NotContains(t, string(data), `"key":"megamart-cart"`)
}

func TestInvalidConfig(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte("sync_strategy: sometimes\n"), 0o644))
	_, _, code := e.run(t, "", "cart", "count")
	assert.Equal(t, exitSysError, code)

	require.NoError(t, os.WriteFile(filepath.Join(e.configDir, "config.yaml"), []byte("log:\n  level: chatty\n"), 0o644))
	_, _, code = e.run(t, "", "cart", "count")
	assert.Equal(t, exitUserError, code)
}

func TestCorruptCartStartsEmpty(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "init")

	entry := `{"key":"megamart-cart","value":"{broken","revision":"x","updated_at":"2026-01-01T00:00:00Z"}` + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(e.dataDir, "entries.jsonl"), []byte(entry), 0o644))

	stdout, stderr, code := e.run(t, "", "cart", "count")
	require.Equal(t, exitSuccess, code)
	assert.Equal(t, "0\n", stdout)
	assert.Contains(t, stderr, "cart data is corrupt")
}
