package client

import (
	"log"
	"sync"
	"time"
)

// FetchFunc hỏi server xem artifact đã sẵn sàng chưa.
// ready=true thì url phải khác rỗng. Lỗi tạm thời trả err, poller sẽ thử lại.
type FetchFunc func(id uint) (url string, ready bool, err error)

// Số lần hỏi tối đa trước khi bỏ cuộc (150 lần x 2s = 5 phút cho audio)
const DefaultMaxAttempts = 150

// Khoảng polling khuyến nghị theo loại artifact
const (
	AudioPollInterval = 2 * time.Second
	ImagePollInterval = 3 * time.Second
	RecapPollInterval = 3 * time.Second
)

// ArtifactPoller theo dõi các artifact sinh bất đồng bộ (audio, ảnh, recap)
// cho tới khi sẵn sàng. Mỗi artifact chỉ có 1 vòng poll tại 1 thời điểm,
// kết quả được cache nên hỏi lại không tốn request.
type ArtifactPoller struct {
	Fetch       FetchFunc
	Interval    time.Duration
	MaxAttempts int

	// OnGiveUp được gọi đúng 1 lần khi artifact vượt MaxAttempts mà chưa sẵn sàng
	OnGiveUp func(id uint)

	mu      sync.Mutex
	cache   map[uint]string
	polling map[uint]chan struct{}
}

func NewArtifactPoller(fetch FetchFunc, interval time.Duration) *ArtifactPoller {
	if interval <= 0 {
		interval = AudioPollInterval
	}
	return &ArtifactPoller{
		Fetch:       fetch,
		Interval:    interval,
		MaxAttempts: DefaultMaxAttempts,
		cache:       make(map[uint]string),
		polling:     make(map[uint]chan struct{}),
	}
}

// URL trả về url đã cache của artifact, "" nếu chưa sẵn sàng
func (p *ArtifactPoller) URL(id uint) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cache[id]
}

// Watch bắt đầu poll artifact. callback được gọi đúng 1 lần khi sẵn sàng.
// Artifact đã có trong cache thì callback gọi ngay, không poll lại.
// Đang có vòng poll cho id này rồi thì gọi Watch lần nữa là no-op.
func (p *ArtifactPoller) Watch(id uint, callback func(url string)) {
	p.mu.Lock()
	if url, ok := p.cache[id]; ok {
		p.mu.Unlock()
		if callback != nil {
			callback(url)
		}
		return
	}
	if _, running := p.polling[id]; running {
		p.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	p.polling[id] = stop
	p.mu.Unlock()

	go p.poll(id, stop, callback)
}

func (p *ArtifactPoller) poll(id uint, stop chan struct{}, callback func(url string)) {
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	defer func() {
		p.mu.Lock()
		if p.polling[id] == stop {
			delete(p.polling, id)
		}
		p.mu.Unlock()
	}()

	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		url, ready, err := p.Fetch(id)
		if err != nil {
			// Lỗi tạm thời: log rồi poll tiếp, không tính là thất bại
			log.Printf("Poll artifact %d thất bại (lần %d): %v", id, attempt, err)
			continue
		}
		if !ready {
			continue
		}

		p.mu.Lock()
		p.cache[id] = url
		p.mu.Unlock()

		if callback != nil {
			callback(url)
		}
		return
	}

	// Hết số lần thử: trạng thái cuối, không poll lại tự động
	log.Printf("Bỏ cuộc sau %d lần poll artifact %d", maxAttempts, id)
	if p.OnGiveUp != nil {
		p.OnGiveUp(id)
	}
}

// Stop dừng vòng poll của 1 artifact (nếu đang chạy)
func (p *ArtifactPoller) Stop(id uint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if stop, ok := p.polling[id]; ok {
		close(stop)
		delete(p.polling, id)
	}
}

// StopAll dừng mọi vòng poll, giữ nguyên cache
func (p *ArtifactPoller) StopAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, stop := range p.polling {
		close(stop)
		delete(p.polling, id)
	}
}
