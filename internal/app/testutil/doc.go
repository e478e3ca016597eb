// Package testutil provides test doubles and helpers shared by the pipeline
// packages.
//
//   - MockTranscriber and MockTextGenerator: configurable stand-ins for the
//     api interfaces, with call history
//   - MockTranscriptionDAO: testify mock of repository.TranscriptionDAO for
//     error paths
//   - SetupTestSQLite: a real SQLite store in t.TempDir()
//   - FakeMediaConverter and FakeSplitter: ffmpeg-free audio stages
//
// # Usage
//
//	func TestPipeline(t *testing.T) {
//	    db := testutil.SetupTestSQLite(t)
//	    transcriber := testutil.NewMockTranscriber().
//	        SetResponseForFile("talk_000.wav", "Hello world.")
//	    ...
//	}
package testutil
