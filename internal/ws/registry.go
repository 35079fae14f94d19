package ws

import (
	"sync"
	"time"
)

// Conn 推送通道的最小能力集。注册进 Registry 的必须是写安全的实现，
// 裸的 gorilla 连接要先经 NewClient 包装
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// WriteTimeout 单次推送的写超时，慢客户端不准拖住业务请求
const WriteTimeout = 2 * time.Second

// wireConn gorilla *websocket.Conn 直接满足
type wireConn interface {
	WriteJSON(v any) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client 写安全的连接包装：gorilla 只允许一个goroutine调写方法，
// 推送可能从任意请求goroutine发起，这里用互斥锁串行化，并给每次写挂上超时
type Client struct {
	mu   sync.Mutex
	conn wireConn
}

func NewClient(conn wireConn) *Client {
	return &Client{conn: conn}
}

func (c *Client) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	return c.conn.WriteJSON(v)
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// Registry 在线连接注册表。进程内有效，重启清零；
// 多实例部署需要换成外部共享注册表的实现
type Registry interface {
	Join(userID uint64, conn Conn)
	Leave(conn Conn)
	Lookup(userID uint64) (Conn, bool)
}

type MemoryRegistry struct {
	mu    sync.RWMutex
	conns map[uint64]Conn
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{conns: make(map[uint64]Conn)}
}

// Join 同一用户后连的覆盖先连的
func (r *MemoryRegistry) Join(userID uint64, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[userID] = conn
}

// Leave 按句柄身份匹配删除：迟到的断开事件不能误删同一用户更新的连接，
// 连接数很小，线性扫描足够
func (r *MemoryRegistry) Leave(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for uid, c := range r.conns {
		if c == conn {
			delete(r.conns, uid)
			return
		}
	}
}

func (r *MemoryRegistry) Lookup(userID uint64) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[userID]
	return c, ok
}
