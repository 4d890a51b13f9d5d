package core

import (
	"context"
	"log"
	"time"
)

// SyncScheduler 后台定期执行远端到本地的对账。
// 本地是缓存、远端是事实源，周期性拉取让伴侣的新记录最终到达本地镜像。
type SyncScheduler struct {
	service  *JournalService
	interval time.Duration
	ticker   *time.Ticker
	quit     chan struct{}
}

// NewSyncScheduler 创建对账调度器
func NewSyncScheduler(service *JournalService, interval time.Duration) *SyncScheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SyncScheduler{
		service:  service,
		interval: interval,
		quit:     make(chan struct{}),
	}
}

// Start 启动后台调度器（非阻塞）
func (ss *SyncScheduler) Start() {
	ss.ticker = time.NewTicker(ss.interval)
	go func() {
		log.Printf("[INFO] Background Sync Scheduler started (interval: %s)", ss.interval)
		for {
			select {
			case <-ss.ticker.C:
				if !ss.service.remoteActive() {
					continue // 未登录时无事可做
				}
				if err := ss.service.SyncFromRemote(context.Background()); err != nil {
					log.Printf("[WARN] Background sync failed: %v", err)
				}
			case <-ss.quit:
				ss.ticker.Stop()
				log.Println("[INFO] Background Sync Scheduler stopped")
				return
			}
		}
	}()
}

// Stop 停止后台调度器
func (ss *SyncScheduler) Stop() {
	close(ss.quit)
}
