package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestMockCamera_PlaybackAndClock(t *testing.T) {
	frame1 := gocv.NewMatWithSize(FrameHeight, FrameWidth, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(FrameHeight, FrameWidth, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame1, &frame2}, false)
	cam.SetClock(5000, 66)

	if err := cam.Open(); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer cam.Close()

	f1, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if f1.TimestampMs != 5000 {
		t.Errorf("first timestamp = %d, want 5000", f1.TimestampMs)
	}
	f1.Close()

	f2, err := cam.ReadFrame()
	if err != nil {
		t.Fatalf("ReadFrame() error = %v", err)
	}
	if f2.TimestampMs != 5066 {
		t.Errorf("second timestamp = %d, want 5066", f2.TimestampMs)
	}
	f2.Close()

	// Third read fails without looping.
	if _, err := cam.ReadFrame(); err == nil {
		t.Error("expected error after all frames consumed")
	}
}

func TestMockCamera_LoopKeepsStamping(t *testing.T) {
	frame := gocv.NewMatWithSize(FrameHeight, FrameWidth, gocv.MatTypeCV8UC3)
	defer frame.Close()

	cam := NewMockCamera([]*gocv.Mat{&frame}, true)
	cam.SetClock(0, 100)
	cam.Open()
	defer cam.Close()

	// The clock keeps advancing across loop wraps.
	for i := 0; i < 5; i++ {
		f, err := cam.ReadFrame()
		if err != nil {
			t.Fatalf("ReadFrame() iteration %d error = %v", i, err)
		}
		if f.TimestampMs != int64(i*100) {
			t.Errorf("iteration %d timestamp = %d, want %d", i, f.TimestampMs, i*100)
		}
		f.Close()
	}
}

func TestMockCamera_ReadBeforeOpen(t *testing.T) {
	cam := NewMockCamera(nil, false)

	if _, err := cam.ReadFrame(); err == nil {
		t.Error("expected error reading from an unopened mock")
	}
}

func TestMockCamera_FPSLog(t *testing.T) {
	cam := NewMockCamera(nil, false)

	cam.SetFPS(ActiveFPS)
	cam.SetFPS(IdleFPS)
	cam.SetFPS(0) // ignored

	log := cam.FPSLog()
	if len(log) != 2 || log[0] != ActiveFPS || log[1] != IdleFPS {
		t.Errorf("FPSLog() = %v, want [%d %d]", log, ActiveFPS, IdleFPS)
	}
	if cam.FPS() != IdleFPS {
		t.Errorf("FPS() = %d, want %d", cam.FPS(), IdleFPS)
	}
}
