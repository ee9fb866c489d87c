package client

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client gọi HTTP API của server, dùng cho app hoặc CLI phía client
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) getJSON(path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type sentenceEnvelope struct {
	Sentence struct {
		ID             uint   `json:"id"`
		AudioURL       string `json:"audio_url"`
		AudioGenerated bool   `json:"audio_generated"`
	} `json:"sentence"`
}

type lessonEnvelope struct {
	Lesson struct {
		ID                  uint   `json:"id"`
		ComicImageURL       string `json:"comic_image_url"`
		ComicImageGenerated bool   `json:"comic_image_generated"`
		RecapMarkdownURL    string `json:"recap_markdown_url"`
		RecapGenerated      bool   `json:"recap_generated"`
	} `json:"lesson"`
}

// FetchSentenceAudio hỏi server xem audio của 1 câu đã sẵn sàng chưa
func (c *Client) FetchSentenceAudio(sentenceID uint) (string, bool, error) {
	var env sentenceEnvelope
	if err := c.getJSON(fmt.Sprintf("/api/lessons/sentences/%d", sentenceID), &env); err != nil {
		return "", false, err
	}
	return env.Sentence.AudioURL, env.Sentence.AudioGenerated, nil
}

// FetchComicImage hỏi server xem ảnh minh họa của 1 bài học đã sẵn sàng chưa
func (c *Client) FetchComicImage(lessonID uint) (string, bool, error) {
	var env lessonEnvelope
	if err := c.getJSON(fmt.Sprintf("/api/lessons/%d", lessonID), &env); err != nil {
		return "", false, err
	}
	return env.Lesson.ComicImageURL, env.Lesson.ComicImageGenerated, nil
}

// FetchRecap hỏi server xem markdown ôn tập của 1 bài đã sẵn sàng chưa
func (c *Client) FetchRecap(lessonID uint) (string, bool, error) {
	var env lessonEnvelope
	if err := c.getJSON(fmt.Sprintf("/api/lessons/%d", lessonID), &env); err != nil {
		return "", false, err
	}
	return env.Lesson.RecapMarkdownURL, env.Lesson.RecapGenerated, nil
}

// NewAudioPoller tạo poller theo dõi audio của các câu (2s/lần)
func (c *Client) NewAudioPoller() *ArtifactPoller {
	return NewArtifactPoller(c.FetchSentenceAudio, AudioPollInterval)
}

// NewComicImagePoller tạo poller theo dõi ảnh minh họa (3s/lần)
func (c *Client) NewComicImagePoller() *ArtifactPoller {
	return NewArtifactPoller(c.FetchComicImage, ImagePollInterval)
}

// NewRecapPoller tạo poller theo dõi markdown ôn tập (3s/lần)
func (c *Client) NewRecapPoller() *ArtifactPoller {
	return NewArtifactPoller(c.FetchRecap, RecapPollInterval)
}
