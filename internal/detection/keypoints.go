package detection

import "github.com/ironsheep/pose-tools-mcp/internal/pose"

/* OpenPose COCO body keypoints, in network output order
0: Nose        6: Left Elbow    12: Left Knee
1: Neck        7: Left Wrist    13: Left Ankle
2: R Shoulder  8: Right Hip     14: Right Eye
3: R Elbow     9: Right Knee    15: Left Eye
4: R Wrist    10: Right Ankle   16: Right Ear
5: L Shoulder 11: Left Hip      17: Left Ear
*/

// noLandmark marks a COCO keypoint with no counterpart in pose.LandmarkID.
const noLandmark pose.LandmarkID = -1

// cocoKeypoints maps heatmap channel index to landmark. The neck has no
// MediaPipe equivalent and is dropped.
var cocoKeypoints = [18]pose.LandmarkID{
	pose.Nose,
	noLandmark,
	pose.RightShoulder,
	pose.RightElbow,
	pose.RightWrist,
	pose.LeftShoulder,
	pose.LeftElbow,
	pose.LeftWrist,
	pose.RightHip,
	pose.RightKnee,
	pose.RightAnkle,
	pose.LeftHip,
	pose.LeftKnee,
	pose.LeftAnkle,
	pose.RightEye,
	pose.LeftEye,
	pose.RightEar,
	pose.LeftEar,
}

// heatmapPeak is the strongest response in one keypoint heatmap.
type heatmapPeak struct {
	X, Y       int     // Cell in the heatmap grid
	Confidence float64 // Peak value
}

// collectKeypoints turns per-channel heatmap peaks into a landmark set.
// Peaks below thresh are dropped; a nil set is returned when fewer than
// minKeypoints survive. peaks is indexed by COCO channel.
func collectKeypoints(peaks []heatmapPeak, mapW, mapH int, thresh float64, minKeypoints int) *pose.LandmarkSet {
	if mapW <= 0 || mapH <= 0 {
		return nil
	}
	set := pose.NewLandmarkSet()
	for k, p := range peaks {
		if k >= len(cocoKeypoints) {
			break
		}
		id := cocoKeypoints[k]
		if id == noLandmark || p.Confidence < thresh {
			continue
		}
		set.Set(id, pose.Point2D{
			X: float64(p.X) / float64(mapW),
			Y: float64(p.Y) / float64(mapH),
		}, p.Confidence)
	}
	if set.Len() == 0 || set.Len() < minKeypoints {
		return nil
	}
	return set
}
