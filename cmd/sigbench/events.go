package main

// package level registry of the different event types

const ScenarioStartedEventID = 0x01
const ScenarioCompletedEventID = 0x02

type ScenarioStartedEvent struct {
	Name      string
	Callbacks int
}

func (e ScenarioStartedEvent) Type() uint32 {
	return ScenarioStartedEventID
}

type ScenarioCompletedEvent struct {
	Result Result
}

func (e ScenarioCompletedEvent) Type() uint32 {
	return ScenarioCompletedEventID
}
