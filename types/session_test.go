package types

import "testing"

func stagedFixture(name string) *StagedFile {
	return &StagedFile{Filename: name, ContentType: "image/jpeg", Data: []byte{0x1}}
}

func TestSessionReady(t *testing.T) {
	session := NewUploadSession("s1", "Yeezy 350 Zebra")
	if session.Ready() {
		t.Fatal("empty session must not be ready")
	}
	session.SelectFile(CategorySneaker, stagedFixture("sneaker.jpg"))
	session.SelectFile(CategoryBox, stagedFixture("box.jpg"))
	if session.Ready() {
		t.Fatal("two of three slots must not be ready")
	}
	session.SelectFile(CategoryVideo, stagedFixture("spin.gif"))
	if !session.Ready() {
		t.Fatal("all three slots staged, session should be ready")
	}
}

func TestSelectFileClearsStaleState(t *testing.T) {
	session := NewUploadSession("s1", "Yeezy 350 Zebra")
	session.SelectFile(CategoryBox, stagedFixture("box.jpg"))
	session.SetResult(CategoryBox, &AnalysisResult{Verdict: VerdictReal, RealnessPercent: 80})
	session.SetError(CategoryBox, "previous failure")

	session.SelectFile(CategoryBox, stagedFixture("box-retake.jpg"))
	if session.Result(CategoryBox) != nil {
		t.Error("replacing a file must clear the stale result")
	}
	if session.ErrorText(CategoryBox) != "" {
		t.Error("replacing a file must clear the stale error text")
	}
	if session.File(CategoryBox).Filename != "box-retake.jpg" {
		t.Error("replacement file not staged")
	}
}

func TestRemoveFileClearsSlot(t *testing.T) {
	session := NewUploadSession("s1", "Yeezy 350 Zebra")
	session.SelectFile(CategoryVideo, stagedFixture("spin.gif"))
	session.SetResult(CategoryVideo, &AnalysisResult{Verdict: VerdictReal})

	session.RemoveFile(CategoryVideo)
	if session.File(CategoryVideo) != nil {
		t.Error("slot should be empty after removal")
	}
	if session.Result(CategoryVideo) != nil {
		t.Error("removal must drop the category result")
	}
	if session.Slots()[CategoryVideo] {
		t.Error("slot map should report the category as empty")
	}
}

func TestAllSucceeded(t *testing.T) {
	session := NewUploadSession("s1", "Yeezy 350 Zebra")
	for _, c := range Categories {
		session.SetResult(c, &AnalysisResult{Verdict: VerdictReal, RealnessPercent: 90})
	}
	if !session.AllSucceeded() {
		t.Fatal("all categories settled, AllSucceeded should hold")
	}
	session.SetError(CategoryBox, "backend unavailable")
	session.SelectFile(CategoryBox, stagedFixture("box.jpg"))
	if session.AllSucceeded() {
		t.Fatal("re-staging a file clears its result, AllSucceeded must not hold")
	}
}
