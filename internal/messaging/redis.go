package messaging

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"beatbox-service/internal/logger"
	"beatbox-service/internal/timing"
	"beatbox-service/internal/types"
)

const (
	statusHash  = "beatbox"
	timingHash  = "beatbox:timing"
	faultSet    = "beatbox:fault"
	hitStream   = "events:beatbox"
	faultStream = "events:faults"

	controlChannel = "beatbox:control"
	streamMaxLen   = 1000
)

type Callbacks struct {
	ModeCallback   func(types.Mode) error
	TempoCallback  func(int) error
	VolumeCallback func(int) error
	PlayCallback   func(types.Trigger) error
	StopCallback   func()
}

type RedisClient struct {
	client    *redis.Client
	callbacks Callbacks
	logger    *logger.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

func NewRedisClient(addr string, db int, l *logger.Logger) *RedisClient {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisClient{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
		logger: l,
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetCallbacks must be called before StartListening.
func (r *RedisClient) SetCallbacks(callbacks Callbacks) {
	r.callbacks = callbacks
}

func (r *RedisClient) Connect() error {
	r.logger.Infof("Attempting to connect to Redis at %s", r.client.Options().Addr)

	if err := r.client.Ping(r.ctx).Err(); err != nil {
		return fmt.Errorf("Redis connection failed: %w", err)
	}
	r.logger.Infof("Successfully connected to Redis")
	return nil
}

// StartListening starts the command list listeners and the control channel
// subscriber.
func (r *RedisClient) StartListening() error {
	r.logger.Infof("Starting Redis listeners")

	pubsub := r.client.Subscribe(r.ctx, controlChannel)
	r.logger.Infof("Subscribed to Redis channel: %s", controlChannel)

	r.wg.Add(1)
	go r.redisListener(pubsub)

	r.wg.Add(4)
	go r.listCommandListener("beatbox:mode", r.handleModeCommand)
	go r.listCommandListener("beatbox:tempo", r.handleTempoCommand)
	go r.listCommandListener("beatbox:volume", r.handleVolumeCommand)
	go r.listCommandListener("beatbox:play", r.handlePlayCommand)

	return nil
}

func (r *RedisClient) listCommandListener(key string, handler func(string) error) {
	defer r.wg.Done()
	r.logger.Debugf("Starting list command listener for %s", key)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debugf("Context cancelled, exiting %s listener", key)
			return
		default:
			// Short BRPOP timeout so cancellation is noticed
			result, err := r.client.BRPop(r.ctx, 5*time.Second, key).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) {
					continue
				}
				if r.ctx.Err() != nil {
					r.logger.Debugf("Context cancelled, exiting %s listener", key)
					return
				}
				r.logger.Warnf("Error reading from %s list: %v", key, err)
				// Avoid spinning while the server is unreachable
				select {
				case <-r.ctx.Done():
					return
				case <-time.After(time.Second):
				}
				continue
			}

			if len(result) >= 2 { // BRPOP returns [key, value]
				value := strings.TrimSpace(result[1])
				r.logger.Debugf("Received command from %s: %s", key, value)
				if err := handler(value); err != nil {
					r.logger.Warnf("Error handling %s command: %v", key, err)
				}
			}
		}
	}
}

func (r *RedisClient) handleModeCommand(value string) error {
	if r.callbacks.ModeCallback == nil {
		return nil
	}
	m, err := types.ParseMode(value)
	if err != nil {
		return err
	}
	return r.callbacks.ModeCallback(m)
}

func (r *RedisClient) handleTempoCommand(value string) error {
	if r.callbacks.TempoCallback == nil {
		return nil
	}
	bpm, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid tempo command: %s", value)
	}
	return r.callbacks.TempoCallback(bpm)
}

func (r *RedisClient) handleVolumeCommand(value string) error {
	if r.callbacks.VolumeCallback == nil {
		return nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid volume command: %s", value)
	}
	return r.callbacks.VolumeCallback(v)
}

func (r *RedisClient) handlePlayCommand(value string) error {
	if r.callbacks.PlayCallback == nil {
		return nil
	}
	t, err := types.ParseTrigger(value)
	if err != nil {
		return err
	}
	return r.callbacks.PlayCallback(t)
}

func (r *RedisClient) handleControlMessage(payload string) {
	switch payload {
	case "stop":
		if r.callbacks.StopCallback != nil {
			r.logger.Infof("Stop requested over Redis")
			r.callbacks.StopCallback()
		}
	default:
		r.logger.Warnf("Invalid control message: %s", payload)
	}
}

func (r *RedisClient) redisListener(pubsub *redis.PubSub) {
	defer r.wg.Done()
	defer pubsub.Close()

	channel := pubsub.Channel()

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debugf("Context cancelled, exiting listener")
			return
		case msg, ok := <-channel:
			if !ok || msg == nil {
				r.logger.Errorf("Redis subscription closed, control channel disabled")
				return
			}

			r.logger.Debugf("Received Redis message: channel=%s payload=%s", msg.Channel, msg.Payload)
			if msg.Channel == controlChannel {
				r.handleControlMessage(msg.Payload)
			}
		}
	}
}

func (r *RedisClient) publishHashSet(hash string, values map[string]interface{}, channel, payload string) error {
	pipe := r.client.Pipeline()
	pipe.HSet(r.ctx, hash, values)
	pipe.Publish(r.ctx, channel, payload)
	_, err := pipe.Exec(r.ctx)
	return err
}

// PublishStatus stores the status snapshot in the beatbox hash.
func (r *RedisClient) PublishStatus(s types.Status) error {
	return r.publishHashSet(statusHash, map[string]interface{}{
		"mode":      s.Mode.String(),
		"bpm":       s.BPM,
		"volume":    s.Volume,
		"sequencer": s.Sequencer,
	}, statusHash, "status")
}

func (r *RedisClient) PublishSequencerState(state string) error {
	r.logger.Debugf("Publishing sequencer state: %s", state)
	return r.publishHashSet(statusHash, map[string]interface{}{
		"sequencer": state,
	}, statusHash, "sequencer")
}

// PublishTiming stores loop period statistics under name.
func (r *RedisClient) PublishTiming(name string, s timing.Stats) error {
	return r.publishHashSet(timingHash, map[string]interface{}{
		name + ":min":   fmt.Sprintf("%.3f", timing.Millis(s.Min)),
		name + ":max":   fmt.Sprintf("%.3f", timing.Millis(s.Max)),
		name + ":avg":   fmt.Sprintf("%.3f", timing.Millis(s.Avg)),
		name + ":count": s.Count,
	}, timingHash, name)
}

// ReportHit appends a one-shot trigger (gesture or remote) to the hit stream.
func (r *RedisClient) ReportHit(t types.Trigger, source string) error {
	return r.client.XAdd(r.ctx, &redis.XAddArgs{
		Stream: hitStream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"voice":  t.String(),
			"source": source,
			"ts":     time.Now().UnixMilli(),
		},
	}).Err()
}

// ReportFaultPresent records a disabled subsystem.
func (r *RedisClient) ReportFaultPresent(code int, description string) error {
	r.logger.Infof("Reporting fault present: code=%d, description=%s", code, description)

	pipe := r.client.Pipeline()
	pipe.SAdd(r.ctx, faultSet, code)
	pipe.XAdd(r.ctx, &redis.XAddArgs{
		Stream: faultStream,
		MaxLen: streamMaxLen,
		Values: map[string]interface{}{
			"group":       "beatbox",
			"code":        code,
			"description": description,
			"ts":          time.Now().Unix(),
		},
	})
	pipe.Publish(r.ctx, statusHash, "fault")

	if _, err := pipe.Exec(r.ctx); err != nil {
		return fmt.Errorf("failed to report fault %d: %w", code, err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	r.logger.Infof("Closing Redis client")
	r.cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Debugf("All Redis goroutines finished")
	case <-time.After(5 * time.Second):
		r.logger.Warnf("Timeout waiting for Redis goroutines to finish")
	}

	return r.client.Close()
}
