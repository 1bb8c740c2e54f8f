// Package mqtt provides the broker connection for Exposure Core.
//
// The service consumes retained topology snapshots published by the
// assistant bridge and announces artifact updates after each save. A
// Last Will on the system status topic lets peers detect crashes.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.Subscribe(mqtt.Topics{}.TopologySnapshot(), 1, handleSnapshot)
package mqtt
