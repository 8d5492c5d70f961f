package cache

import (
	"container/list"
	"encoding/json"
	"sync"
	"time"
)

// defaultMaxEntries はキャッシュの最大保持件数です。超過時は最古エントリを捨てます
const defaultMaxEntries = 1000

// item はキャッシュ1件分の状態です。値は JSON スナップショットで保持します
type item struct {
	key       string
	payload   []byte
	expiresAt time.Time
}

// Cache はプロセス内のTTL付きキャッシュです
// Drive の一覧結果など短時間の再利用を目的とし、プロセス再起動で消えます
// ヒットは保存値を返し、ミス・期限切れはゼロ値を返す素直な契約です
type Cache struct {
	mu         sync.Mutex
	items      map[string]*list.Element
	order      *list.List // 先頭が最古
	maxEntries int
	now        func() time.Time
}

// New はキャッシュを初期化します
func New() *Cache {
	return &Cache{
		items:      make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: defaultMaxEntries,
		now:        time.Now,
	}
}

// Set は値を JSON 化してキャッシュに保存します
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}

	el := c.order.PushBack(&item{
		key:       key,
		payload:   payload,
		expiresAt: c.now().Add(ttl),
	})
	c.items[key] = el

	// 上限超過時は最古エントリから追い出す
	for len(c.items) > c.maxEntries {
		oldest := c.order.Front()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*item).key)
	}

	return nil
}

// Get は保存値を out にデシリアライズします
// ヒット時は true、ミス・期限切れ時は false を返し out には触れません
func (c *Cache) Get(key string, out interface{}) bool {
	c.mu.Lock()

	el, ok := c.items[key]
	if !ok {
		c.mu.Unlock()
		return false
	}

	it := el.Value.(*item)
	if c.now().After(it.expiresAt) {
		c.order.Remove(el)
		delete(c.items, key)
		c.mu.Unlock()
		return false
	}

	payload := it.payload
	c.mu.Unlock()

	return json.Unmarshal(payload, out) == nil
}

// Delete は指定キーを削除します
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		c.order.Remove(el)
		delete(c.items, key)
	}
}

// Len は現在の保持件数を返します（期限切れ掃除は行いません）
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
