package main

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

// AckStrategy defines how a terminal acknowledges duty assignments. Ack
// reports whether an acknowledgment was actually sent.
type AckStrategy interface {
	Ack(ctx context.Context, cli paho.Client, driverID, assignmentID string) bool
}

// AutoAck sends an ACK after an optional fixed delay.
type AutoAck struct {
	Delay time.Duration
}

// Ack implements AckStrategy.
func (a AutoAck) Ack(ctx context.Context, cli paho.Client, driverID, assignmentID string) bool {
	if a.Delay > 0 {
		select {
		case <-time.After(a.Delay):
		case <-ctx.Done():
			return false
		}
	}
	return publishAck(cli, driverID, assignmentID)
}

// RandomAck drops acknowledgments with the configured probability and
// waits for the specified delay before sending.
type RandomAck struct {
	Delay    time.Duration
	DropRate float64
}

// Ack implements AckStrategy.
func (r RandomAck) Ack(ctx context.Context, cli paho.Client, driverID, assignmentID string) bool {
	if r.DropRate > 0 && rng.Float64() < r.DropRate {
		return false
	}
	if r.Delay > 0 {
		select {
		case <-time.After(r.Delay):
		case <-ctx.Done():
			return false
		}
	}
	return publishAck(cli, driverID, assignmentID)
}

func publishAck(cli paho.Client, driverID, assignmentID string) bool {
	payload, err := json.Marshal(struct {
		AssignmentID string `json:"assignment_id"`
		DriverID     string `json:"driver_id"`
	}{AssignmentID: assignmentID, DriverID: driverID})
	if err != nil {
		log.Printf("marshal ack: %v", err)
		return false
	}
	token := cli.Publish(ackTopic, 0, false, payload)
	if !token.WaitTimeout(5 * time.Second) {
		log.Printf("ack publish timeout for %s", driverID)
		return false
	}
	if err := token.Error(); err != nil {
		log.Printf("publish ack error for %s: %v", driverID, err)
		return false
	}
	return true
}
